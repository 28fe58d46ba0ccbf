package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spiffcs/bzmigrate/config"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
	"github.com/spiffcs/bzmigrate/internal/tui"
)

// NewCmdLabels creates the labels command with subcommands.
func NewCmdLabels(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Reset, provision, or inspect destination labels",
		Long: `Manage the labels of the destination repository.

Subcommands:
  reset      Delete every label of the repository
  provision  Create the sentinel, product and product/component labels
  list       List labels
  create     Create a single label
  delete     Delete a single label`,
	}

	cmd.AddCommand(NewCmdLabelsReset(opts))
	cmd.AddCommand(NewCmdLabelsProvision(opts))
	cmd.AddCommand(NewCmdLabelsList(opts))
	cmd.AddCommand(NewCmdLabelsCreate())
	cmd.AddCommand(NewCmdLabelsDelete())

	return cmd
}

// NewCmdLabelsReset creates the labels reset subcommand.
func NewCmdLabelsReset(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every label of the destination repository",
		Long: `Delete every label of the destination repository, including the host's
default labels. Failures on individual labels are reported at the end; the
remaining labels are still deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLabelsReset(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "List the labels that would be deleted")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// NewCmdLabelsProvision creates the labels provision subcommand.
func NewCmdLabelsProvision(opts *Options) *cobra.Command {
	var noProductLabels bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create labels for every Bugzilla product and component",
		Long: `Create the sentinel label, one label per product and one label per
product/component pair. Products and components come from the taxonomy
config section when set, otherwise from Bugzilla. Labels that already
exist are left alone, so provisioning can be repeated safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ProductLabels = !noProductLabels
			return runLabelsProvision(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "List the labels that would be created")
	cmd.Flags().BoolVar(&noProductLabels, "no-product-labels", false, "Only create product/component labels")

	return cmd
}

// NewCmdLabelsList creates the labels list subcommand.
func NewCmdLabelsList(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List destination labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLabelsList(cmd.Context(), opts)
		},
	}
}

// NewCmdLabelsCreate creates the labels create subcommand.
func NewCmdLabelsCreate() *cobra.Command {
	var colorHex, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a single label",
		Long: `Create a single label. Useful to check that the token may manage labels.
Without --color, the color is derived from the name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelsCreate(cmd.Context(), model.Label{
				Name:        args[0],
				Color:       strings.TrimPrefix(colorHex, "#"),
				Description: description,
			})
		},
	}

	cmd.Flags().StringVar(&colorHex, "color", "", "Label color as 6 hex digits")
	cmd.Flags().StringVar(&description, "description", "", "Label description")

	return cmd
}

// NewCmdLabelsDelete creates the labels delete subcommand.
func NewCmdLabelsDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a single label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelsDelete(cmd.Context(), args[0])
		},
	}
}

func runLabelsReset(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := formatter(opts)
	if err != nil {
		return err
	}

	if !opts.DryRun && !opts.Yes {
		ok, err := confirm(os.Stdin, os.Stdout,
			fmt.Sprintf("Delete every label of %s:%s?", cfg.HostName(), cfg.Destination.Repo))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	rt, ctx := setupRuntime(ctx, opts, tui.ResetTasks())

	dest, err := connect(ctx, rt, cfg)
	if err != nil {
		_ = rt.close()
		return err
	}

	rt.sendEvent(tui.TaskLabels, tui.StatusRunning)
	report, resetErr := migrate.ResetLabels(ctx, dest, migrate.LabelOptions{
		DryRun: opts.DryRun,
		OnLabel: func(e migrate.LabelEvent) {
			rt.progress(tui.TaskLabels, "Deleting labels", e.Completed, e.Total)
		},
	})
	rt.progressDone()
	finishLabelTask(rt, report, resetErr)
	rt.reportRateLimit(dest)

	if err := rt.close(); err != nil {
		log.Warn("progress display failed", "error", err)
	}
	if err := f.FormatLabelReport(report, os.Stdout); err != nil {
		return err
	}
	return resetErr
}

func runLabelsProvision(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := formatter(opts)
	if err != nil {
		return err
	}

	rt, ctx := setupRuntime(ctx, opts, tui.ProvisionTasks())

	dest, err := connect(ctx, rt, cfg)
	if err != nil {
		_ = rt.close()
		return err
	}

	products, err := loadTaxonomy(ctx, rt, cfg)
	if err != nil {
		_ = rt.close()
		return err
	}

	rt.sendEvent(tui.TaskLabels, tui.StatusRunning)
	report, provisionErr := migrate.ProvisionLabels(ctx, dest, products, migrate.LabelOptions{
		Separator:     cfg.LabelSeparator(),
		SentinelLabel: cfg.SentinelLabel(),
		ProductLabels: opts.ProductLabels,
		MaxNameLength: maxLabelName(cfg.HostName()),
		DryRun:        opts.DryRun,
		OnLabel: func(e migrate.LabelEvent) {
			rt.progress(tui.TaskLabels, "Creating labels", e.Completed, e.Total)
		},
	})
	rt.progressDone()
	finishLabelTask(rt, report, provisionErr)
	rt.reportRateLimit(dest)

	if err := rt.close(); err != nil {
		log.Warn("progress display failed", "error", err)
	}
	if err := f.FormatLabelReport(report, os.Stdout); err != nil {
		return err
	}
	return provisionErr
}

// loadTaxonomy returns the configured taxonomy, or asks Bugzilla for it.
func loadTaxonomy(ctx context.Context, rt *progressRuntime, cfg *config.Config) ([]model.Product, error) {
	rt.sendEvent(tui.TaskSource, tui.StatusRunning)

	if len(cfg.Taxonomy) > 0 {
		log.Info("using configured taxonomy", "products", len(cfg.Taxonomy))
		rt.sendEvent(tui.TaskSource, tui.StatusComplete,
			tui.WithMessage(fmt.Sprintf("%d products from config", len(cfg.Taxonomy))))
		return cfg.Taxonomy, nil
	}

	source, err := openSource(cfg)
	if err != nil {
		rt.sendEvent(tui.TaskSource, tui.StatusError, tui.WithError(err))
		return nil, err
	}

	var taxonomy migrate.Taxonomy = source
	products, err := taxonomy.Products(ctx)
	if err != nil {
		rt.sendEvent(tui.TaskSource, tui.StatusError, tui.WithError(err))
		return nil, fmt.Errorf("failed to read Bugzilla products: %w", err)
	}

	rt.sendEvent(tui.TaskSource, tui.StatusComplete,
		tui.WithMessage(fmt.Sprintf("%d products", len(products))))
	return products, nil
}

// maxLabelName returns the label name limit of host, or 0 for none.
func maxLabelName(hostName string) int {
	if hostName == constants.HostGitHub {
		return constants.GitHubMaxLabelName
	}
	return 0
}

// finishLabelTask marks the labels task complete or failed.
func finishLabelTask(rt *progressRuntime, report migrate.LabelReport, err error) {
	if err != nil {
		rt.sendEvent(tui.TaskLabels, tui.StatusError, tui.WithError(err))
		return
	}
	done := len(report.Created) + len(report.Existed) + len(report.Deleted) + len(report.Planned) + len(report.Missing)
	rt.sendEvent(tui.TaskLabels, tui.StatusComplete, tui.WithCount(done))
}

func runLabelsList(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := formatter(opts)
	if err != nil {
		return err
	}

	dest, err := openDestination(ctx, cfg)
	if err != nil {
		return err
	}

	labels, err := dest.ListLabels(ctx)
	if err != nil {
		return err
	}
	return f.FormatLabels(labels, os.Stdout)
}

func runLabelsCreate(ctx context.Context, label model.Label) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if label.Color == "" {
		label.Color = migrate.ProductColor(label.Name)
	}

	dest, err := openDestination(ctx, cfg)
	if err != nil {
		return err
	}
	if err := dest.CreateLabel(ctx, label); err != nil {
		return err
	}

	fmt.Printf("%s Created label %q on %s\n", color.GreenString("✓"), label.Name, dest.Name())
	return nil
}

func runLabelsDelete(ctx context.Context, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dest, err := openDestination(ctx, cfg)
	if err != nil {
		return err
	}
	if err := dest.DeleteLabel(ctx, name); err != nil {
		return err
	}

	fmt.Printf("%s Deleted label %q from %s\n", color.GreenString("✓"), name, dest.Name())
	return nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
