package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/bzmigrate/internal/format"
	"github.com/spiffcs/bzmigrate/internal/migrate"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// defaultTermWidth is used when stdout is not a terminal.
const defaultTermWidth = 100

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Width overrides the detected terminal width when positive.
	Width int
}

func (f *TableFormatter) width() int {
	if f.Width > 0 {
		return f.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// swatch renders a two-column block in the label's color.
func swatch(hex string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return "  "
	}
	return color.BgRGB(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff)).Sprint("  ")
}

// FormatLabels outputs labels as a table
func (f *TableFormatter) FormatLabels(labels []model.Label, w io.Writer) error {
	if len(labels) == 0 {
		fmt.Fprintln(w, "No labels found.")
		return nil
	}

	const (
		colColor   = 10
		maxColName = 40
	)

	colName := len("Name")
	for _, l := range labels {
		if width := format.DisplayWidth(l.Name); width > colName {
			colName = width
		}
	}
	if colName > maxColName {
		colName = maxColName
	}
	colDesc := f.width() - colName - colColor - 4
	if colDesc < 10 {
		colDesc = 10
	}

	fmt.Fprintf(w, "%-*s  %-*s  %s\n", colName, "Name", colColor, "Color", "Description")
	fmt.Fprintln(w, strings.Repeat("-", colName+colColor+4+len("Description")))

	for _, l := range labels {
		name, nameWidth := format.TruncateToWidth(l.Name, colName)
		desc, _ := format.TruncateToWidth(l.Description, colDesc)
		colorCol := swatch(l.Color) + " " + l.Color

		fmt.Fprintf(w, "%s  %s  %s\n",
			format.PadRight(name, nameWidth, colName),
			format.PadRight(colorCol, 3+len(l.Color), colColor),
			desc,
		)
	}

	fmt.Fprintf(w, "\n%d label(s)\n", len(labels))
	return nil
}

// FormatProducts outputs products and their components as an indented list
func (f *TableFormatter) FormatProducts(products []model.Product, w io.Writer) error {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	maxWidth := f.width()
	components := 0

	for _, p := range products {
		line := bold(p.Name)
		if p.Description != "" {
			desc, _ := format.TruncateToWidth(p.Description, maxWidth-format.DisplayWidth(p.Name)-3)
			line += "  " + color.HiBlackString(desc)
		}
		fmt.Fprintln(w, line)

		colName := 0
		for _, c := range p.Components {
			if width := format.DisplayWidth(c.Name); width > colName {
				colName = width
			}
		}
		for _, c := range p.Components {
			components++
			if c.Description == "" {
				fmt.Fprintf(w, "  - %s\n", c.Name)
				continue
			}
			desc, _ := format.TruncateToWidth(c.Description, maxWidth-colName-8)
			fmt.Fprintf(w, "  - %s  %s\n",
				format.PadRight(c.Name, format.DisplayWidth(c.Name), colName),
				color.HiBlackString(desc))
		}
	}

	fmt.Fprintf(w, "\n%d product(s), %d component(s)\n", len(products), components)
	return nil
}

// FormatRecord outputs a single source record
func (f *TableFormatter) FormatRecord(rec model.Record, w io.Writer) error {
	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprintf("Bug %d:", rec.ID), rec.Summary)
	fmt.Fprintf(w, "  Product:   %s\n", rec.Product)
	fmt.Fprintf(w, "  Component: %s\n", rec.Component)
	if rec.URL != "" {
		fmt.Fprintf(w, "  URL:       %s\n", hyperlink(rec.URL, rec.URL))
	}
	return nil
}

// FormatImportSummary outputs the outcome counts of an import run
func (f *TableFormatter) FormatImportSummary(sum migrate.Summary, w io.Writer) error {
	fmt.Fprintln(w, strings.Repeat("━", 40))
	if sum.Last == 0 {
		fmt.Fprintf(w, "  Nothing to import (ids %d..%d)\n", sum.Start, sum.End)
		return nil
	}

	fmt.Fprintf(w, "  Processed ids %d..%d of %d\n", sum.Start, sum.Last, sum.End)
	fmt.Fprintf(w, "  %s %d created\n", color.GreenString("●"), sum.Created)
	if sum.Reserved > 0 {
		fmt.Fprintf(w, "  %s %d reserved for unavailable bugs\n", color.YellowString("●"), sum.Reserved)
	}
	if sum.Skipped > 0 {
		fmt.Fprintf(w, "  %s %d already present\n", color.HiBlackString("○"), sum.Skipped)
	}
	if sum.Relocked > 0 {
		fmt.Fprintf(w, "  %s %d relocked\n", color.CyanString("○"), sum.Relocked)
	}
	if sum.Last < sum.End {
		fmt.Fprintf(w, "  %s stopped before the end; run again to resume\n", color.RedString("!"))
	}
	return nil
}

// FormatLabelReport outputs the result of a label reset or provisioning run
func (f *TableFormatter) FormatLabelReport(report migrate.LabelReport, w io.Writer) error {
	if n := len(report.Created); n > 0 {
		fmt.Fprintf(w, "  %s %d created\n", color.GreenString("●"), n)
	}
	if n := len(report.Existed); n > 0 {
		fmt.Fprintf(w, "  %s %d already existed\n", color.HiBlackString("○"), n)
	}
	if n := len(report.Deleted); n > 0 {
		fmt.Fprintf(w, "  %s %d deleted\n", color.GreenString("●"), n)
	}
	if n := len(report.Missing); n > 0 {
		fmt.Fprintf(w, "  %s %d listed but not found on delete\n", color.YellowString("!"), n)
		for _, name := range report.Missing {
			fmt.Fprintf(w, "      %s\n", name)
		}
	}
	if n := len(report.Planned); n > 0 {
		fmt.Fprintf(w, "  %s %d planned (dry run)\n", color.CyanString("○"), n)
		for _, name := range report.Planned {
			fmt.Fprintf(w, "      %s\n", name)
		}
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(w, "  %s %d failed\n", color.RedString("✗"), len(report.Failed))
		for _, name := range failedNames(report) {
			fmt.Fprintf(w, "      %s: %v\n", name, report.Failed[name])
		}
	}
	return nil
}
