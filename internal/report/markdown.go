package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase rebuilds the caser on every call: a cases.Caser carries
// transform state and must not be shared between workers.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// RenderMarkdown produces the condensed human-readable rendering of the
// report: field sections as bullet lists, one heading per table with a
// column-aligned body. Geometry and confidence are dropped. Missing values
// render as empty cells, never as null markers.
func (r *Report) RenderMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Medical Report: %s\n\n", r.SourceImage)
	fmt.Fprintf(&b, "**Processed At:** %s\n\n", r.ProcessedAt.Format("2006-01-02T15:04:05Z07:00"))

	tables := r.Tables
	for _, s := range r.Sections {
		// Tables render between the leading patient/lab sections and the
		// trailing footer/other sections, matching document order.
		if s.Name == "Footer Information" || s.Name == "Other Fields" {
			renderTables(&b, tables)
			tables = nil
		}
		renderFieldSection(&b, s)
	}
	renderTables(&b, tables)

	return b.String()
}

func renderFieldSection(b *strings.Builder, s FieldSection) {
	if len(s.Fields) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", s.Name)
	for _, f := range s.Fields {
		label := titleCase(strings.ToLower(f.Label))
		if label == "" {
			fmt.Fprintf(b, "- %s\n", f.Value)
			continue
		}
		fmt.Fprintf(b, "- **%s:** %s\n", label, f.Value)
	}
	b.WriteString("\n")
}

func renderTables(b *strings.Builder, tables []Table) {
	for _, t := range tables {
		fmt.Fprintf(b, "## %s\n\n", titleCase(strings.ToLower(t.SectionLabel)))
		renderTableBody(b, t)
		b.WriteString("\n")
	}
}

func renderTableBody(b *strings.Builder, t Table) {
	b.WriteString("|")
	for _, col := range t.Columns {
		fmt.Fprintf(b, " %s |", escapePipes(col))
	}
	b.WriteString("\n|")
	for range t.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString("|")
		for _, cell := range row.Cells {
			fmt.Fprintf(b, " %s |", escapePipes(cell.Text))
		}
		b.WriteString("\n")
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
