package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/bzmigrate/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "bzmigrate",
		Short: "Migrate Bugzilla bugs to numbered placeholder issues",
		Long: `A CLI tool that prepares a GitHub or GitLab repository to take over
from a Bugzilla instance. It resets and provisions product/component labels,
then creates one locked placeholder issue per Bugzilla bug so that bug N
becomes issue #N.

Typical order:
  bzmigrate labels reset
  bzmigrate labels provision
  bzmigrate import`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table, json)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	rootCmd.PersistentFlags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	rootCmd.PersistentFlags().Lookup("tui").NoOptDefVal = "true"

	// Register subcommands
	rootCmd.AddCommand(NewCmdLabels(opts))
	rootCmd.AddCommand(NewCmdImport(opts))
	rootCmd.AddCommand(NewCmdBugzilla(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
