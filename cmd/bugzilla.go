package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spiffcs/bzmigrate/internal/bugzilla"
	"github.com/spiffcs/bzmigrate/internal/log"
)

// NewCmdBugzilla creates the bugzilla command with subcommands.
func NewCmdBugzilla(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bugzilla",
		Aliases: []string{"bz"},
		Short:   "Inspect the source Bugzilla instance",
	}

	cmd.AddCommand(NewCmdBugzillaProducts(opts))
	cmd.AddCommand(NewCmdBugzillaShow(opts))
	cmd.AddCommand(NewCmdBugzillaInfo())

	return cmd
}

// NewCmdBugzillaProducts creates the bugzilla products subcommand.
func NewCmdBugzillaProducts(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products and their components",
		Long:  `List the products and components labels would be provisioned from.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBugzillaProducts(cmd.Context(), opts)
		},
	}
}

// NewCmdBugzillaShow creates the bugzilla show subcommand.
func NewCmdBugzillaShow(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the fields of one bug used for its placeholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid bug id %q", args[0])
			}
			return runBugzillaShow(cmd.Context(), opts, id)
		},
	}
}

// NewCmdBugzillaInfo creates the bugzilla info subcommand.
func NewCmdBugzillaInfo() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the Bugzilla version and highest bug id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBugzillaInfo(cmd.Context())
		},
	}
}

func sourceFromConfig() (*bugzilla.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openSource(cfg)
}

func runBugzillaProducts(ctx context.Context, opts *Options) error {
	f, err := formatter(opts)
	if err != nil {
		return err
	}
	source, err := sourceFromConfig()
	if err != nil {
		return err
	}

	products, err := source.Products(ctx)
	if err != nil {
		return fmt.Errorf("failed to read Bugzilla products: %w", err)
	}
	return f.FormatProducts(products, os.Stdout)
}

func runBugzillaShow(ctx context.Context, opts *Options, id int) error {
	f, err := formatter(opts)
	if err != nil {
		return err
	}
	source, err := sourceFromConfig()
	if err != nil {
		return err
	}

	rec, err := source.Bug(ctx, id)
	if err != nil {
		if bugzilla.IsUnavailable(err) {
			log.Info("bug would get a reserved placeholder on import", "id", id)
		}
		return err
	}
	return f.FormatRecord(rec, os.Stdout)
}

func runBugzillaInfo(ctx context.Context) error {
	source, err := sourceFromConfig()
	if err != nil {
		return err
	}

	version, err := source.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read Bugzilla version: %w", err)
	}
	maxID, err := source.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("failed to find the last Bugzilla id: %w", err)
	}

	fmt.Printf("Bugzilla:    %s\n", source.BaseURL())
	fmt.Printf("  version:   %s\n", version)
	fmt.Printf("  last bug:  %d\n", maxID)
	return nil
}
