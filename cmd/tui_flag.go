package cmd

import (
	"fmt"
	"strings"

	"github.com/spiffcs/bzmigrate/internal/output"
	"github.com/spiffcs/bzmigrate/internal/tui"
)

// tuiFlag implements pflag.Value for the tri-state --tui flag.
type tuiFlag struct {
	opts *Options
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{opts: opts}
}

func (f *tuiFlag) String() string {
	switch {
	case f.opts.TUI == nil:
		return "auto"
	case *f.opts.TUI:
		return "true"
	default:
		return "false"
	}
}

func (f *tuiFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		v := true
		f.opts.TUI = &v
	case "false", "0", "no", "off":
		v := false
		f.opts.TUI = &v
	case "auto", "":
		f.opts.TUI = nil
	default:
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	return nil
}

func (f *tuiFlag) Type() string {
	return "bool"
}

// shouldUseTUI determines whether to use TUI based on options.
func shouldUseTUI(opts *Options) bool {
	// Logs and JSON go to the terminal unmixed with the progress display
	if opts.Verbosity > 0 || output.Format(opts.Format) == output.FormatJSON {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
