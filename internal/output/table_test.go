package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/spiffcs/bzmigrate/internal/format"
	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
)

func init() {
	color.NoColor = true
}

func TestFormatLabelsTable(t *testing.T) {
	labels := []model.Label{
		{Name: "dummy import from bugzilla", Color: "efefef"},
		{Name: "tools/opt", Color: "1d76db", Description: strings.Repeat("optimizer ", 20)},
	}

	var buf bytes.Buffer
	f := &TableFormatter{Width: 80}
	if err := f.FormatLabels(labels, &buf); err != nil {
		t.Fatalf("FormatLabels() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Name", "Color", "dummy import from bugzilla", "tools/opt", "1d76db", "2 label(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for i, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if width := format.DisplayWidth(line); width > 80 {
			t.Errorf("line %d is %d columns wide, want <= 80: %q", i, width, line)
		}
	}
}

func TestFormatLabelsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).FormatLabels(nil, &buf); err != nil {
		t.Fatalf("FormatLabels() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No labels found.") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestFormatProductsTable(t *testing.T) {
	products := []model.Product{
		{
			Name:        "tools",
			Description: "Command line tools",
			Components: []model.Component{
				{Name: "opt", Description: "The optimizer"},
				{Name: "llc"},
			},
		},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{Width: 80}).FormatProducts(products, &buf); err != nil {
		t.Fatalf("FormatProducts() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"tools", "Command line tools", "- opt", "The optimizer", "- llc", "1 product(s), 2 component(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatImportSummaryTable(t *testing.T) {
	tests := []struct {
		name    string
		sum     migrate.Summary
		want    []string
		notWant []string
	}{
		{
			name:    "complete run",
			sum:     migrate.Summary{Start: 1, End: 4, Last: 4, Created: 3, Reserved: 1},
			want:    []string{"Processed ids 1..4 of 4", "3 created", "1 reserved"},
			notWant: []string{"run again"},
		},
		{
			name: "interrupted run",
			sum:  migrate.Summary{Start: 1, End: 20, Last: 10, Created: 10},
			want: []string{"10 created", "run again to resume"},
		},
		{
			name: "nothing to do",
			sum:  migrate.Summary{Start: 5, End: 4},
			want: []string{"Nothing to import"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TableFormatter{}).FormatImportSummary(tt.sum, &buf); err != nil {
				t.Fatalf("FormatImportSummary() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output unexpectedly contains %q:\n%s", notWant, out)
				}
			}
		})
	}
}

func TestFormatLabelReportTable(t *testing.T) {
	report := migrate.LabelReport{
		Created: []string{"a/b"},
		Existed: []string{"dummy import from bugzilla"},
		Failed:  map[string]error{"c/d": errors.New("validation failed")},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).FormatLabelReport(report, &buf); err != nil {
		t.Fatalf("FormatLabelReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"1 created", "1 already existed", "1 failed", "c/d: validation failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatLabelReportMissing(t *testing.T) {
	report := migrate.LabelReport{
		Deleted: []string{"bug"},
		Missing: []string{"tools/opt"},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).FormatLabelReport(report, &buf); err != nil {
		t.Fatalf("FormatLabelReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"1 deleted", "1 listed but not found on delete", "tools/opt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := (&JSONFormatter{}).FormatLabelReport(report, &buf); err != nil {
		t.Fatalf("FormatLabelReport() error = %v", err)
	}
	var got labelReportJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Missing) != 1 || got.Missing[0] != "tools/opt" {
		t.Errorf("missing = %v", got.Missing)
	}
}

func TestJSONLabelReport(t *testing.T) {
	report := migrate.LabelReport{
		Deleted: []string{"bug"},
		Failed:  map[string]error{"question": errors.New("forbidden")},
	}

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatLabelReport(report, &buf); err != nil {
		t.Fatalf("FormatLabelReport() error = %v", err)
	}

	var got labelReportJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Deleted) != 1 || got.Deleted[0] != "bug" {
		t.Errorf("deleted = %v", got.Deleted)
	}
	if len(got.Failed) != 1 || got.Failed[0].Label != "question" || got.Failed[0].Error != "forbidden" {
		t.Errorf("failed = %+v", got.Failed)
	}
	if got.Created == nil {
		t.Error("created should encode as an empty array, not null")
	}
}

func TestJSONImportSummary(t *testing.T) {
	var buf bytes.Buffer
	sum := migrate.Summary{Start: 1, End: 3, Last: 3, Created: 2, Skipped: 1}
	if err := NewFormatter(FormatJSON).FormatImportSummary(sum, &buf); err != nil {
		t.Fatalf("FormatImportSummary() error = %v", err)
	}

	var got importSummaryJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Processed != 3 || got.Created != 2 || got.Skipped != 1 {
		t.Errorf("summary = %+v", got)
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter for json")
	}
	if _, ok := NewFormatter(FormatTable).(*TableFormatter); !ok {
		t.Error("expected TableFormatter for table")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("expected TableFormatter as fallback")
	}
}

func TestSwatch(t *testing.T) {
	if got := swatch("not-a-color"); got != "  " {
		t.Errorf("swatch(invalid) = %q, want two spaces", got)
	}
	if got := format.DisplayWidth(swatch("efefef")); got != 2 {
		t.Errorf("swatch width = %d, want 2", got)
	}
}
