package output

import (
	"io"

	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	FormatLabels(labels []model.Label, w io.Writer) error
	FormatProducts(products []model.Product, w io.Writer) error
	FormatRecord(rec model.Record, w io.Writer) error
	FormatImportSummary(sum migrate.Summary, w io.Writer) error
	FormatLabelReport(report migrate.LabelReport, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		return &TableFormatter{}
	}
}
