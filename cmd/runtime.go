package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/bzmigrate/config"
	"github.com/spiffcs/bzmigrate/internal/bugzilla"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/ghclient"
	"github.com/spiffcs/bzmigrate/internal/glclient"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/output"
	"github.com/spiffcs/bzmigrate/internal/tui"
)

// progressRuntime bundles the TUI state threaded through long-running commands.
type progressRuntime struct {
	useTUI bool
	events chan tui.Event
	group  *errgroup.Group
	cancel context.CancelFunc

	// lastPercent throttles plain progress lines.
	lastPercent int
}

// setupRuntime starts the TUI when enabled and returns a context that is
// canceled if the user quits the TUI early.
func setupRuntime(ctx context.Context, opts *Options, tasks []tui.Task) (*progressRuntime, context.Context) {
	useTUI := shouldUseTUI(opts)

	// Suppress logs during TUI to avoid interleaving with display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	ctx, cancel := context.WithCancel(ctx)
	rt := &progressRuntime{useTUI: useTUI, cancel: cancel, lastPercent: -1}
	if !useTUI {
		return rt, ctx
	}

	events := make(chan tui.Event, 100)
	rt.events = events
	rt.group = new(errgroup.Group)
	rt.group.Go(func() error {
		defer cancel()
		return tui.Run(events, tui.WithTasks(tasks))
	})
	return rt, ctx
}

// close closes the event channel and waits for the TUI to finish.
func (rt *progressRuntime) close() error {
	defer rt.cancel()
	if rt.events == nil {
		return nil
	}
	close(rt.events)
	rt.events = nil
	if err := rt.group.Wait(); err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	return nil
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *progressRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// progress reports done/total for a task, throttled to whole percent steps.
func (rt *progressRuntime) progress(task tui.TaskID, label string, done, total int) {
	if total <= 0 {
		return
	}
	percent := done * 100 / total
	if percent == rt.lastPercent {
		return
	}
	rt.lastPercent = percent

	if rt.useTUI {
		rt.sendEvent(task, tui.StatusRunning, tui.WithCompleted(done, total))
		return
	}
	if percent%constants.LogThrottlePercent == 0 || done == total {
		log.Progress("%s: %d/%d (%d%%)...", label, done, total, percent)
	}
}

// progressDone ends a plain progress line and resets throttling.
func (rt *progressRuntime) progressDone() {
	rt.lastPercent = -1
	if !rt.useTUI {
		log.ProgressDone()
	}
}

// rateLimitReporter is implemented by destinations that track API quota.
type rateLimitReporter interface {
	LastRateLimit() (remaining, limit int, resetAt time.Time, limited bool)
}

// reportRateLimit forwards the destination's last seen quota to the TUI.
func (rt *progressRuntime) reportRateLimit(dest host.Host) {
	r, ok := dest.(rateLimitReporter)
	if !ok {
		return
	}
	remaining, limit, resetAt, limited := r.LastRateLimit()
	if limit == 0 && !limited {
		return
	}
	if remaining < constants.RateLimitLowWatermark && !rt.useTUI {
		log.Warn("rate limit low", "remaining", remaining, "resetAt", resetAt.Format(time.Kitchen))
	}
	if rt.events != nil {
		tui.SendEvent(rt.events, tui.RateLimitEvent{Remaining: remaining, ResetAt: resetAt, Limited: limited})
	}
}

// loadConfig loads and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (see 'bzmigrate config path'):\n%w", err)
	}
	return cfg, nil
}

// openSource creates the Bugzilla client from configuration.
func openSource(cfg *config.Config) (*bugzilla.Client, error) {
	return bugzilla.NewClient(cfg.Bugzilla.URL, bugzilla.WithAPIKey(cfg.BugzillaAPIKey()))
}

// openDestination creates the issue host client selected by destination.host.
func openDestination(ctx context.Context, cfg *config.Config) (host.Host, error) {
	switch cfg.HostName() {
	case constants.HostGitHub:
		opts := []ghclient.Option{ghclient.WithLockReason(cfg.LockReason())}
		if cfg.Destination.BaseURL != "" {
			opts = append(opts, ghclient.WithEnterpriseURL(cfg.Destination.BaseURL))
		}
		c, err := ghclient.NewClient(ctx, cfg.DestinationToken(), cfg.Destination.Repo, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case constants.HostGitLab:
		c, err := glclient.NewClient(cfg.DestinationToken(), cfg.Destination.BaseURL, cfg.Destination.Repo)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported destination host %q", cfg.Destination.Host)
	}
}

// authenticator is implemented by destinations that can name the token owner.
type authenticator interface {
	AuthenticatedUser(ctx context.Context) (string, error)
}

// connect opens the destination and verifies the credentials, reporting the
// outcome on the connect task.
func connect(ctx context.Context, rt *progressRuntime, cfg *config.Config) (host.Host, error) {
	rt.sendEvent(tui.TaskConnect, tui.StatusRunning)

	dest, err := openDestination(ctx, cfg)
	if err != nil {
		rt.sendEvent(tui.TaskConnect, tui.StatusError, tui.WithError(err))
		return nil, err
	}

	target := dest.Name()
	if a, ok := dest.(authenticator); ok {
		user, err := a.AuthenticatedUser(ctx)
		if err != nil {
			rt.sendEvent(tui.TaskConnect, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		target = fmt.Sprintf("%s as %s", target, user)
	}

	log.Info("connected", "destination", target)
	rt.sendEvent(tui.TaskConnect, tui.StatusComplete, tui.WithMessage(target))
	return dest, nil
}

// formatter returns the output formatter selected by --output.
func formatter(opts *Options) (output.Formatter, error) {
	switch f := output.Format(opts.Format); f {
	case "", output.FormatTable, output.FormatJSON:
		return output.NewFormatter(f), nil
	default:
		return nil, fmt.Errorf("invalid output format %q (must be table or json)", opts.Format)
	}
}
