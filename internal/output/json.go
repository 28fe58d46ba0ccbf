package output

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatLabels outputs labels as a JSON array
func (f *JSONFormatter) FormatLabels(labels []model.Label, w io.Writer) error {
	if labels == nil {
		labels = []model.Label{}
	}
	return f.encode(w, labels)
}

// FormatProducts outputs products with their components
func (f *JSONFormatter) FormatProducts(products []model.Product, w io.Writer) error {
	if products == nil {
		products = []model.Product{}
	}
	return f.encode(w, products)
}

// FormatRecord outputs a single source record
func (f *JSONFormatter) FormatRecord(rec model.Record, w io.Writer) error {
	return f.encode(w, rec)
}

type importSummaryJSON struct {
	Start     int `json:"start"`
	End       int `json:"end"`
	Last      int `json:"last"`
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Reserved  int `json:"reserved"`
	Skipped   int `json:"skipped"`
	Relocked  int `json:"relocked"`
}

// FormatImportSummary outputs the outcome counts of an import run
func (f *JSONFormatter) FormatImportSummary(sum migrate.Summary, w io.Writer) error {
	return f.encode(w, importSummaryJSON{
		Start:     sum.Start,
		End:       sum.End,
		Last:      sum.Last,
		Processed: sum.Processed(),
		Created:   sum.Created,
		Reserved:  sum.Reserved,
		Skipped:   sum.Skipped,
		Relocked:  sum.Relocked,
	})
}

type labelFailureJSON struct {
	Label string `json:"label"`
	Error string `json:"error"`
}

type labelReportJSON struct {
	Created []string           `json:"created"`
	Existed []string           `json:"existed"`
	Deleted []string           `json:"deleted"`
	Planned []string           `json:"planned"`
	Missing []string           `json:"missing"`
	Failed  []labelFailureJSON `json:"failed"`
}

// FormatLabelReport outputs the result of a label reset or provisioning run
func (f *JSONFormatter) FormatLabelReport(report migrate.LabelReport, w io.Writer) error {
	out := labelReportJSON{
		Created: nonNil(report.Created),
		Existed: nonNil(report.Existed),
		Deleted: nonNil(report.Deleted),
		Planned: nonNil(report.Planned),
		Missing: nonNil(report.Missing),
		Failed:  []labelFailureJSON{},
	}
	for _, name := range failedNames(report) {
		out.Failed = append(out.Failed, labelFailureJSON{Label: name, Error: report.Failed[name].Error()})
	}
	return f.encode(w, out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func failedNames(report migrate.LabelReport) []string {
	names := make([]string, 0, len(report.Failed))
	for name := range report.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
