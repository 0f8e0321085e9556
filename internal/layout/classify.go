package layout

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meditext/labstruct/internal/vocab"
)

// RowKind is the classification of a clustered row.
type RowKind int

const (
	KindUnknown RowKind = iota
	KindHeader
	KindData
	KindSectionLabel
	KindFreeform
)

// String returns a string representation of the row kind.
func (k RowKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindData:
		return "data"
	case KindSectionLabel:
		return "section_label"
	case KindFreeform:
		return "freeform"
	default:
		return "unknown"
	}
}

// maxSectionLabelWords bounds how long a single detection may be and still
// count as a section label rather than freeform text.
const maxSectionLabelWords = 4

// ClassifiedRow is a row with its classification and, for header rows, the
// column template inferred from its geometry.
type ClassifiedRow struct {
	Row      Row
	Template *ColumnTemplate // set on header rows only
}

// Classifier applies the ordered classification rules to clustered rows.
// It holds only read-only vocabulary; one classifier is safe to share
// between concurrent pipeline runs.
type Classifier struct {
	vocab *vocab.Vocabulary
}

// NewClassifier creates a classifier over the given vocabulary.
func NewClassifier(v *vocab.Vocabulary) *Classifier {
	return &Classifier{vocab: v}
}

// Classify assigns a kind to every row using ordered first-match-wins rules:
//
//  1. header: at least two detections match the column vocabulary; the
//     matching detections' x-ranges become the active column template.
//  2. data: a template is active and the row's detections spread across at
//     least two of its column bands.
//  3. section label: a single short colon-free title-case detection that
//     either immediately precedes a header row or names a known heading.
//  4. freeform: everything else; an intervening freeform row clears the
//     active template, closing the current table.
//
// Returned rows carry their kind; header rows additionally carry the
// template built from their geometry.
func (c *Classifier) Classify(rows []Row) []ClassifiedRow {
	headerAt := make([]bool, len(rows))
	for i, row := range rows {
		headerAt[i] = c.isHeaderRow(row)
	}

	out := make([]ClassifiedRow, 0, len(rows))
	var active *ColumnTemplate
	for i, row := range rows {
		if len(row.Detections) == 0 {
			continue
		}
		cr := ClassifiedRow{Row: row}
		switch {
		case headerAt[i]:
			cr.Row.Kind = KindHeader
			cr.Template = c.templateFrom(row)
			active = cr.Template
		case active != nil && c.spansColumns(row, active):
			cr.Row.Kind = KindData
		case c.isSectionLabel(row, i, headerAt):
			cr.Row.Kind = KindSectionLabel
			active = nil
		default:
			cr.Row.Kind = KindFreeform
			active = nil
		}
		out = append(out, cr)
	}
	return out
}

// isHeaderRow checks rule 1: two or more detections matching distinct
// column names.
func (c *Classifier) isHeaderRow(row Row) bool {
	matched := make(map[string]bool)
	for _, d := range row.Detections {
		if name, ok := c.vocab.MatchColumn(d.Text); ok {
			matched[name] = true
		}
	}
	return len(matched) >= 2
}

// templateFrom builds the column template from a header row's geometry.
// Each matching detection contributes its x-range as a column band.
func (c *Classifier) templateFrom(row Row) *ColumnTemplate {
	t := &ColumnTemplate{}
	seen := make(map[string]bool)
	for _, d := range row.Detections {
		name, ok := c.vocab.MatchColumn(d.Text)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		b := d.Bounds()
		t.Columns = append(t.Columns, ColumnBand{Name: name, MinX: b.MinX, MaxX: b.MaxX})
	}
	return t
}

// spansColumns checks rule 2: the row's detections can be distributed
// across at least two of the template's bands.
func (c *Classifier) spansColumns(row Row, t *ColumnTemplate) bool {
	hit := make(map[int]bool)
	for _, d := range row.Detections {
		b := d.Bounds()
		if idx, overlap := t.bestOverlap(b.MinX, b.MaxX); overlap > 0 {
			hit[idx] = true
		}
	}
	if len(hit) >= 2 {
		return true
	}
	// Sparse rows: a lone value/unit/range fragment under an active template
	// still belongs to the table when its text shape says so.
	if len(hit) == 1 && len(row.Detections) == 1 {
		text := row.Detections[0].Text
		return isNumeric(text) || isReferenceRange(text) || c.vocab.IsUnit(text)
	}
	return false
}

// isSectionLabel checks rule 3. A known heading name qualifies on its own;
// otherwise a short title-case detection qualifies only when the next row
// is a header.
func (c *Classifier) isSectionLabel(row Row, i int, headerAt []bool) bool {
	if len(row.Detections) != 1 {
		return false
	}
	text := strings.TrimSpace(row.Detections[0].Text)
	if text == "" || strings.Contains(text, ":") {
		return false
	}
	if len(strings.Fields(text)) > maxSectionLabelWords {
		return false
	}
	if c.vocab.IsHeading(text) {
		return true
	}
	if i+1 >= len(headerAt) || !headerAt[i+1] {
		return false
	}
	// Casers carry transform state and must not be shared between
	// workers; build them per call.
	title := cases.Title(language.English)
	upper := cases.Upper(language.English)
	return text == title.String(strings.ToLower(text)) || text == upper.String(text)
}
