// Package report assembles classified layout output into a single
// immutable report and serializes it to the structured JSON and condensed
// Markdown sinks.
package report

import (
	"time"

	"github.com/meditext/labstruct/internal/detection"
	"github.com/meditext/labstruct/internal/layout"
	"github.com/meditext/labstruct/internal/vocab"
)

// Field is one label/value pair in a report section.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldSection groups fields under a section name. Fields keep the order
// they were first encountered in during the clustering sweep; labels are
// unique within a section, with later values overwriting earlier ones.
type FieldSection struct {
	Name   vocab.Section `json:"name"`
	Fields []Field       `json:"fields"`
}

// TableRow is one aligned data row of a table.
type TableRow struct {
	Cells []layout.Cell `json:"cells"`
}

// Table is an ordered sequence of rows sharing one column template,
// labeled by the nearest preceding section-label row.
type Table struct {
	SectionLabel string     `json:"section_label"`
	Columns      []string   `json:"columns"`
	Rows         []TableRow `json:"rows"`
}

// Report owns the tables and field sections reconstructed from one image.
// It is created once per processed image, never mutated after assembly, and
// written exactly once to each output sink.
type Report struct {
	SourceImage string         `json:"source_image"`
	ProcessedAt time.Time      `json:"processed_at"`
	Sections    []FieldSection `json:"sections"`
	Tables      []Table        `json:"tables"`
}

// Envelope is the complete structured output for one image: every ingested
// detection with its confidence and geometry, plus the assembled report.
type Envelope struct {
	SourceImage string                `json:"source_image"`
	ProcessedAt time.Time             `json:"processed_at"`
	Detections  []detection.Detection `json:"detections"`
	Report      *Report               `json:"report"`
}

// sectionOrder fixes the rendering order of field sections.
var sectionOrder = []vocab.Section{
	vocab.SectionPatient,
	vocab.SectionLab,
	vocab.SectionFooter,
	vocab.SectionOther,
}

// section returns the named section, creating it in canonical position on
// first use.
func (r *Report) section(name vocab.Section) *FieldSection {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	r.Sections = append(r.Sections, FieldSection{Name: name})
	return &r.Sections[len(r.Sections)-1]
}

// setField records a field under the given section. A label already present
// in the section has its value overwritten in place (last-seen-wins); this
// is documented policy, not a correctness guarantee, since OCR order does
// not always match document order.
func (r *Report) setField(name vocab.Section, label, value string) {
	s := r.section(name)
	for i := range s.Fields {
		if s.Fields[i].Label == label {
			s.Fields[i].Value = value
			return
		}
	}
	s.Fields = append(s.Fields, Field{Label: label, Value: value})
}

// Section returns the fields of the named section, or nil if absent.
func (r *Report) Section(name vocab.Section) []Field {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return r.Sections[i].Fields
		}
	}
	return nil
}

// FieldValue returns the value of a labeled field within a section.
func (r *Report) FieldValue(name vocab.Section, label string) (string, bool) {
	for _, f := range r.Section(name) {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// sortSections orders field sections canonically after assembly so the two
// sinks render deterministically.
func (r *Report) sortSections() {
	ordered := make([]FieldSection, 0, len(r.Sections))
	for _, name := range sectionOrder {
		for _, s := range r.Sections {
			if s.Name == name {
				ordered = append(ordered, s)
			}
		}
	}
	r.Sections = ordered
}
