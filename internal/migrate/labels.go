package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/host"
	"github.com/spiffcs/bzmigrate/internal/log"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// LabelAction is what happened to a single label.
type LabelAction string

const (
	LabelCreated LabelAction = "created"
	LabelExisted LabelAction = "existed"
	LabelDeleted LabelAction = "deleted"
	LabelFailed  LabelAction = "failed"
	LabelPlanned LabelAction = "planned" // dry run
	// LabelMissing means a listed label was not found when deleting it.
	LabelMissing LabelAction = "missing"
)

// ErrLabelTooLong is recorded for labels whose name exceeds the host's limit.
var ErrLabelTooLong = errors.New("label name too long")

// LabelEvent reports progress on one label.
type LabelEvent struct {
	Label     model.Label
	Action    LabelAction
	Err       error
	Completed int
	Total     int
}

// LabelOptions configures label reset and provisioning.
type LabelOptions struct {
	Separator     string
	SentinelLabel string
	// ProductLabels also provisions one label per product.
	ProductLabels bool
	// MaxNameLength rejects longer label names before contacting the host.
	// Zero means no limit.
	MaxNameLength int
	DryRun        bool
	// OnLabel is called after each label is processed.
	OnLabel func(LabelEvent)
}

// LabelReport summarizes a reset or provisioning run.
// Per-label failures are collected instead of aborting the run.
type LabelReport struct {
	Created []string
	Existed []string
	Deleted []string
	Planned []string
	Missing []string
	Failed  map[string]error
}

func (r *LabelReport) record(l model.Label, action LabelAction, err error) {
	switch action {
	case LabelCreated:
		r.Created = append(r.Created, l.Name)
	case LabelExisted:
		r.Existed = append(r.Existed, l.Name)
	case LabelDeleted:
		r.Deleted = append(r.Deleted, l.Name)
	case LabelPlanned:
		r.Planned = append(r.Planned, l.Name)
	case LabelMissing:
		r.Missing = append(r.Missing, l.Name)
	case LabelFailed:
		if r.Failed == nil {
			r.Failed = make(map[string]error)
		}
		r.Failed[l.Name] = err
	}
}

// Err joins all per-label failures in name order, or returns nil.
func (r LabelReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, r.Failed[name])
	}
	return fmt.Errorf("%d label(s) failed: %w", len(names), errors.Join(errs...))
}

// PlanLabels returns the labels to provision for products, in a stable order:
// the sentinel label first, then each product followed by its components.
func PlanLabels(products []model.Product, opts LabelOptions) []model.Label {
	var labels []model.Label
	seen := make(map[string]bool)
	add := func(l model.Label) {
		if seen[l.Name] {
			return
		}
		seen[l.Name] = true
		labels = append(labels, l)
	}

	if opts.SentinelLabel != "" {
		add(model.Label{
			Name:        opts.SentinelLabel,
			Color:       constants.SentinelLabelColor,
			Description: "Placeholder imported from Bugzilla",
		})
	}

	for _, p := range products {
		color := ProductColor(p.Name)
		if opts.ProductLabels {
			add(model.Label{
				Name:        p.Name,
				Color:       color,
				Description: truncateDescription(p.Description),
			})
		}
		for _, c := range p.Components {
			add(model.Label{
				Name:        LabelName(p.Name, c.Name, opts.Separator),
				Color:       color,
				Description: truncateDescription(c.Description),
			})
		}
	}

	return labels
}

// ProvisionLabels creates the labels planned for products. Labels that
// already exist count as success, so running it twice is harmless.
func ProvisionLabels(ctx context.Context, h host.Host, products []model.Product, opts LabelOptions) (LabelReport, error) {
	var report LabelReport
	labels := PlanLabels(products, opts)

	for i, l := range labels {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		action := LabelCreated
		var err error
		if n := utf8.RuneCountInString(l.Name); opts.MaxNameLength > 0 && n > opts.MaxNameLength {
			action = LabelFailed
			err = fmt.Errorf("%q has %d characters, limit is %d: %w", l.Name, n, opts.MaxNameLength, ErrLabelTooLong)
			log.Warn("label name too long", "label", l.Name, "length", n)
		} else if opts.DryRun {
			action = LabelPlanned
		} else if err = h.CreateLabel(ctx, l); err != nil {
			if errors.Is(err, host.ErrLabelExists) {
				action, err = LabelExisted, nil
			} else {
				action = LabelFailed
				log.Warn("failed to create label", "label", l.Name, "error", err)
			}
		}

		report.record(l, action, err)
		notify(opts.OnLabel, LabelEvent{Label: l, Action: action, Err: err, Completed: i + 1, Total: len(labels)})
	}

	return report, report.Err()
}

// ResetLabels deletes every label of the destination repository. A failed
// deletion is recorded and the remaining labels are still processed.
func ResetLabels(ctx context.Context, h host.Host, opts LabelOptions) (LabelReport, error) {
	var report LabelReport

	labels, err := h.ListLabels(ctx)
	if err != nil {
		return report, err
	}

	for i, l := range labels {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		action := LabelDeleted
		var err error
		if opts.DryRun {
			action = LabelPlanned
		} else if err = h.DeleteLabel(ctx, l.Name); err != nil {
			if errors.Is(err, host.ErrLabelNotFound) {
				action, err = LabelMissing, nil
				log.Warn("listed label not found on delete", "label", l.Name)
			} else {
				action = LabelFailed
				log.Warn("failed to delete label", "label", l.Name, "error", err)
			}
		}

		report.record(l, action, err)
		notify(opts.OnLabel, LabelEvent{Label: l, Action: action, Err: err, Completed: i + 1, Total: len(labels)})
	}

	return report, report.Err()
}

func notify(fn func(LabelEvent), e LabelEvent) {
	if fn != nil {
		fn(e)
	}
}
