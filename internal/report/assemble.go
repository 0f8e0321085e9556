package report

import (
	"time"

	"github.com/meditext/labstruct/internal/extract"
	"github.com/meditext/labstruct/internal/layout"
)

// defaultTableLabel is used when no section-label row precedes a header.
const defaultTableLabel = "Test Results"

// Assemble merges classified rows into one report. Tables and fields appear
// in the same top-to-bottom order they were encountered during the
// clustering sweep. Assembly is pure: no I/O, no randomness, deterministic
// for a given row sequence.
func Assemble(rows []layout.ClassifiedRow, ex *extract.Extractor, source string, processedAt time.Time) *Report {
	r := &Report{SourceImage: source, ProcessedAt: processedAt}

	var template *layout.ColumnTemplate
	var open *Table
	pendingLabel := ""

	closeTable := func() {
		if open != nil && len(open.Rows) > 0 {
			r.Tables = append(r.Tables, *open)
		}
		open = nil
		template = nil
	}

	for _, cr := range rows {
		switch cr.Row.Kind {
		case layout.KindHeader:
			closeTable()
			template = cr.Template
			label := pendingLabel
			if label == "" {
				label = defaultTableLabel
			}
			pendingLabel = ""
			open = &Table{SectionLabel: label, Columns: columnNames(template)}

		case layout.KindData:
			if template == nil || open == nil {
				continue
			}
			aligned := template.Align(cr.Row)
			open.Rows = append(open.Rows, TableRow{Cells: aligned.Cells})

		case layout.KindSectionLabel:
			closeTable()
			pendingLabel = cr.Row.Text()

		case layout.KindFreeform:
			closeTable()
			// A label only names the table whose header directly follows
			// it; intervening freeform text orphans the label.
			pendingLabel = ""
			for _, f := range ex.ExtractRow(cr.Row) {
				r.setField(f.Section, f.Label, f.Value)
			}
		}
	}
	closeTable()
	r.sortSections()
	return r
}

func columnNames(t *layout.ColumnTemplate) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
