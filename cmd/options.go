package cmd

// Options holds the shared command-line options for the bzmigrate CLI.
type Options struct {
	Format    string
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI
	DryRun    bool

	// Import range and behavior
	Start  int
	End    int
	Relock bool

	// Label options
	ProductLabels bool
	Yes           bool // Skip the confirmation prompt of destructive commands
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Format:        "table",
		Start:         1,
		ProductLabels: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithDryRun reports planned changes without making them.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithRange sets the first and last source id to import. Zero end means
// the last id known to Bugzilla.
func WithRange(start, end int) Option {
	return func(o *Options) {
		o.Start = start
		o.End = end
	}
}
