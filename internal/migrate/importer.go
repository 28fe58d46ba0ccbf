package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/bzmigrate/internal/bugzilla"
	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// ErrMisaligned is returned when the host numbers a new placeholder
// differently from its source record. Something else created an issue or
// pull request in the destination while (or before) the import ran.
var ErrMisaligned = errors.New("destination issue numbers are out of step with source ids")

// Outcome is the result of importing a single source id.
type Outcome int

const (
	// OutcomeCreated means a placeholder for an existing record was created and locked.
	OutcomeCreated Outcome = iota
	// OutcomeReserved means the record was unavailable and a placeholder was
	// created anyway to keep the numbering aligned.
	OutcomeReserved
	// OutcomeSkipped means the destination already had an issue with this number.
	OutcomeSkipped
	// OutcomeExhausted means the id is past the last known source record.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeReserved:
		return "reserved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result describes what ImportOne did for one id.
type Result struct {
	ID       int
	Outcome  Outcome
	Issue    model.Issue
	Record   *model.Record // nil for reserved, skipped and exhausted ids
	DryRun   bool
	Relocked bool
}

// ImportOptions configures an Importer.
type ImportOptions struct {
	// Start is the first source id to import. Defaults to 1.
	Start int
	// End is the last source id to import. Zero asks the source for its
	// last known id once, when the run starts.
	End int

	SentinelLabel string
	Separator     string
	DryRun        bool

	// RelockPlaceholders locks existing placeholders (issues carrying the
	// sentinel label) left unlocked by an interrupted run. Off by default:
	// existing issues are never modified otherwise.
	RelockPlaceholders bool

	// OnResult is called after every non-exhausted id.
	OnResult func(Result, Summary)
}

// Summary counts the outcomes of a run.
type Summary struct {
	Start    int
	End      int
	Created  int
	Reserved int
	Skipped  int
	Relocked int
	// Last is the last id processed, 0 if none.
	Last int
}

// Processed returns how many ids the run got through.
func (s Summary) Processed() int {
	return s.Created + s.Reserved + s.Skipped
}

func (s *Summary) add(r Result) {
	switch r.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeReserved:
		s.Reserved++
	case OutcomeSkipped:
		s.Skipped++
	}
	if r.Relocked {
		s.Relocked++
	}
	s.Last = r.ID
}

// Importer creates one locked placeholder issue per source record, keeping
// destination issue numbers equal to source ids. It keeps no state of its
// own: issues already present at the destination are skipped, so an
// interrupted run is resumed by running it again from the start.
//
// Runs must never overlap on the same destination.
type Importer struct {
	source Source
	dest   host.Host
	opts   ImportOptions

	end      int
	resolved bool
}

// NewImporter creates an importer from source to dest.
func NewImporter(source Source, dest host.Host, opts ImportOptions) *Importer {
	if opts.Start < 1 {
		opts.Start = 1
	}
	if opts.SentinelLabel == "" {
		opts.SentinelLabel = constants.DefaultSentinelLabel
	}
	if opts.Separator == "" {
		opts.Separator = constants.DefaultLabelSeparator
	}
	return &Importer{
		source:   source,
		dest:     dest,
		opts:     opts,
		end:      opts.End,
		resolved: opts.End > 0,
	}
}

// End returns the last id the importer will process, asking the source for
// its last known id once if no explicit end was configured. Bugs the
// caller may not see are not counted, so private bugs above the last
// visible one need an explicit end.
func (im *Importer) End(ctx context.Context) (int, error) {
	if im.resolved {
		return im.end, nil
	}
	maxID, err := im.source.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	log.Info("resolved last source id", "id", maxID)
	im.end = maxID
	im.resolved = true
	return im.end, nil
}

// ImportOne processes source id n. Gaps in the source ids (deleted or private
// records) do not end the import; they get a reserved placeholder so that
// n+1 still lands on destination issue n+1.
func (im *Importer) ImportOne(ctx context.Context, n int) (Result, error) {
	res := Result{ID: n, DryRun: im.opts.DryRun}

	end, err := im.End(ctx)
	if err != nil {
		return res, err
	}
	if n > end {
		res.Outcome = OutcomeExhausted
		return res, nil
	}

	existing, err := im.dest.GetIssue(ctx, n)
	switch {
	case err == nil:
		res.Outcome = OutcomeSkipped
		res.Issue = existing
		return im.maybeRelock(ctx, res)
	case !errors.Is(err, host.ErrIssueNotFound):
		return res, fmt.Errorf("checking destination for #%d: %w", n, err)
	}

	input, record, err := im.placeholderFor(ctx, n)
	if err != nil {
		return res, err
	}
	res.Record = record
	res.Outcome = OutcomeCreated
	if record == nil {
		res.Outcome = OutcomeReserved
	}

	if im.opts.DryRun {
		res.Issue = model.Issue{Number: n, Title: input.Title, Body: input.Body, Labels: input.Labels}
		return res, nil
	}

	created, err := im.dest.CreateIssue(ctx, input)
	if err != nil {
		return res, fmt.Errorf("creating placeholder for #%d: %w", n, err)
	}
	res.Issue = created

	if err := im.dest.LockIssue(ctx, created.Number); err != nil {
		return res, fmt.Errorf("placeholder #%d was created but not locked: %w", created.Number, err)
	}
	res.Issue.Locked = true

	if created.Number != n {
		return res, fmt.Errorf("%w: source id %d became issue #%d", ErrMisaligned, n, created.Number)
	}

	log.Info("imported", "id", n, "outcome", res.Outcome.String(), "title", input.Title)
	return res, nil
}

// placeholderFor builds the issue for source id n. The returned record is nil
// when the source reports the id as missing or private.
func (im *Importer) placeholderFor(ctx context.Context, n int) (model.IssueInput, *model.Record, error) {
	body := ImportedBody(im.source.BaseURL(), n)

	rec, err := im.source.Bug(ctx, n)
	if err != nil {
		if !bugzilla.IsUnavailable(err) {
			return model.IssueInput{}, nil, fmt.Errorf("reading source record %d: %w", n, err)
		}
		log.Info("source record unavailable, reserving number", "id", n, "reason", err)
		return model.IssueInput{
			Title:  fmt.Sprintf(constants.UnavailableTitleFormat, n),
			Body:   body,
			Labels: []string{im.opts.SentinelLabel},
		}, nil, nil
	}

	title := strings.TrimSpace(rec.Summary)
	if title == "" {
		title = fmt.Sprintf(constants.UntitledTitleFormat, n)
	}
	return model.IssueInput{
		Title: title,
		Body:  body,
		Labels: []string{
			LabelName(rec.Product, rec.Component, im.opts.Separator),
			im.opts.SentinelLabel,
		},
	}, &rec, nil
}

// maybeRelock locks an existing, unlocked placeholder when enabled.
func (im *Importer) maybeRelock(ctx context.Context, res Result) (Result, error) {
	issue := res.Issue
	if !im.opts.RelockPlaceholders || im.opts.DryRun || issue.Locked || issue.Deleted ||
		issue.IsPullRequest || !issue.HasLabel(im.opts.SentinelLabel) {
		return res, nil
	}

	if err := im.dest.LockIssue(ctx, issue.Number); err != nil {
		return res, fmt.Errorf("relocking placeholder #%d: %w", issue.Number, err)
	}
	res.Issue.Locked = true
	res.Relocked = true
	log.Info("relocked placeholder", "id", issue.Number)
	return res, nil
}

// Run imports every id from the start cursor up to the last known source id,
// in increasing order. It stops at the first error; the summary tells how
// far it got.
func (im *Importer) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Start: im.opts.Start}

	end, err := im.End(ctx)
	if err != nil {
		return sum, err
	}
	sum.End = end

	for n := im.opts.Start; ; n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := im.ImportOne(ctx, n)
		if err != nil {
			return sum, err
		}
		if res.Outcome == OutcomeExhausted {
			break
		}

		sum.add(res)
		if im.opts.OnResult != nil {
			im.opts.OnResult(res, sum)
		}
	}

	return sum, nil
}
