package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/bzmigrate/internal/ghclient"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/tui"
)

// NewCmdImport creates the import command.
func NewCmdImport(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create one locked placeholder issue per Bugzilla bug",
		Long: `Walk Bugzilla ids upward from --start and create a locked placeholder
issue for each, so that bug N becomes issue #N. Ids the destination already
has are skipped, which makes an interrupted import resumable by running it
again. Missing or private bugs still get a placeholder (titled
"Bugzilla N (unavailable)") to keep the numbering aligned.

Without --end the import stops at the highest bug id the Bugzilla API key can
see. Private bugs above it are not imported unless --end covers them.

Nothing else may create issues or pull requests in the destination while
an import runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.Start, "start", 1, "First Bugzilla id to import")
	cmd.Flags().IntVar(&opts.End, "end", 0, "Last Bugzilla id to import (default: highest id visible to the API key; set it when the newest bugs are private)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would be created without writing")
	cmd.Flags().BoolVar(&opts.Relock, "relock", false, "Lock existing placeholders left unlocked by an interrupted run")

	return cmd
}

func runImport(ctx context.Context, opts *Options) error {
	if opts.Start < 1 {
		return fmt.Errorf("--start must be at least 1, got %d", opts.Start)
	}
	if opts.End != 0 && opts.End < opts.Start {
		return fmt.Errorf("--end %d is before --start %d", opts.End, opts.Start)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := formatter(opts)
	if err != nil {
		return err
	}

	rt, ctx := setupRuntime(ctx, opts, tui.ImportTasks())

	dest, err := connect(ctx, rt, cfg)
	if err != nil {
		_ = rt.close()
		return err
	}

	source, err := openSource(cfg)
	if err != nil {
		_ = rt.close()
		return err
	}

	importer := migrate.NewImporter(source, dest, migrate.ImportOptions{
		Start:              opts.Start,
		End:                opts.End,
		SentinelLabel:      cfg.SentinelLabel(),
		Separator:          cfg.LabelSeparator(),
		DryRun:             opts.DryRun,
		RelockPlaceholders: opts.Relock,
		OnResult: func(res migrate.Result, sum migrate.Summary) {
			log.Debug("processed", "id", res.ID, "outcome", res.Outcome.String(), "issue", res.Issue.Number)
			rt.progress(tui.TaskImport, "Importing placeholders", res.ID-sum.Start+1, sum.End-sum.Start+1)
			if res.Outcome != migrate.OutcomeSkipped {
				rt.reportRateLimit(dest)
			}
		},
	})

	rt.sendEvent(tui.TaskSource, tui.StatusRunning)
	end, err := importer.End(ctx)
	if err != nil {
		rt.sendEvent(tui.TaskSource, tui.StatusError, tui.WithError(err))
		_ = rt.close()
		return fmt.Errorf("failed to find the last Bugzilla id: %w", err)
	}
	rt.sendEvent(tui.TaskSource, tui.StatusComplete, tui.WithMessage(fmt.Sprintf("bug %d", end)))

	rt.sendEvent(tui.TaskImport, tui.StatusRunning)
	sum, runErr := importer.Run(ctx)
	rt.progressDone()

	switch {
	case runErr != nil:
		rt.sendEvent(tui.TaskImport, tui.StatusError, tui.WithError(runErr))
	case sum.Processed() == 0:
		rt.sendEvent(tui.TaskImport, tui.StatusSkipped, tui.WithMessage("nothing to import"))
	case opts.DryRun:
		rt.sendEvent(tui.TaskImport, tui.StatusComplete,
			tui.WithMessage(fmt.Sprintf("%d planned (dry run)", sum.Created+sum.Reserved)))
	default:
		rt.sendEvent(tui.TaskImport, tui.StatusComplete,
			tui.WithMessage(fmt.Sprintf("%d created, %d skipped", sum.Created+sum.Reserved, sum.Skipped)))
	}
	rt.reportRateLimit(dest)

	if err := rt.close(); err != nil {
		log.Warn("progress display failed", "error", err)
	}
	if err := f.FormatImportSummary(sum, os.Stdout); err != nil {
		return err
	}
	return explainImportError(runErr)
}

// explainImportError adds operator guidance to errors that stop an import.
func explainImportError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, migrate.ErrMisaligned):
		return fmt.Errorf("%w\nsomething else created issues or pull requests in the destination; "+
			"numbering can no longer match Bugzilla ids without manual cleanup", err)
	case errors.Is(err, ghclient.ErrRateLimited):
		return fmt.Errorf("%w\nrun 'bzmigrate ratelimit status' and resume with 'bzmigrate import' once it resets", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("import interrupted; run 'bzmigrate import' again to resume: %w", err)
	default:
		return err
	}
}
