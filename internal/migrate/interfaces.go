// Package migrate implements the Bugzilla to issue host migration steps:
// label reset, label provisioning and placeholder issue import.
package migrate

import (
	"context"

	"github.com/spiffcs/bzmigrate/internal/bugzilla"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// Source is the source tracker the migration reads from.
// This interface enables faking Bugzilla in unit tests.
type Source interface {
	// Bug returns the record with the given id. Missing or private records
	// must produce errors for which bugzilla.IsUnavailable is true.
	Bug(ctx context.Context, id int) (model.Record, error)

	// MaxID returns the last known record id.
	MaxID(ctx context.Context) (int, error)

	// BaseURL is used to build back-references to records.
	BaseURL() string
}

// Taxonomy supplies the product/component pairs labels are provisioned from.
type Taxonomy interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// Ensure the Bugzilla client satisfies both interfaces.
var (
	_ Source   = (*bugzilla.Client)(nil)
	_ Taxonomy = (*bugzilla.Client)(nil)
)
