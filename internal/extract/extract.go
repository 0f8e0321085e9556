// Package extract turns freeform rows into labeled fields bucketed by
// report section.
package extract

import (
	"strings"

	"github.com/meditext/labstruct/internal/layout"
	"github.com/meditext/labstruct/internal/vocab"
)

// Field is one extracted label/value pair and the section it belongs to.
type Field struct {
	Section vocab.Section
	Label   string
	Value   string
}

// Extractor resolves freeform row text into fields using the shared
// read-only vocabulary.
type Extractor struct {
	vocab *vocab.Vocabulary
}

// New creates a field extractor over the given vocabulary.
func New(v *vocab.Vocabulary) *Extractor {
	return &Extractor{vocab: v}
}

// ExtractRow splits a freeform row into fields. The row text is split on
// the first colon; rows without a colon become a value with an empty label.
// Labels are matched case-insensitively against the section vocabulary;
// unmatched labels land in Other Fields rather than being dropped. A
// combined age/gender label with a "/" value yields two fields.
func (e *Extractor) ExtractRow(row layout.Row) []Field {
	label, value := SplitLabelValue(row.Text())

	if label != "" && e.vocab.IsAgeGenderLabel(label) {
		if age, gender, ok := splitAgeGender(value); ok {
			return []Field{
				{Section: vocab.SectionPatient, Label: "Age", Value: age},
				{Section: vocab.SectionPatient, Label: "Gender", Value: gender},
			}
		}
	}

	section := vocab.SectionOther
	if label != "" {
		section = e.vocab.FieldSection(label)
	}
	return []Field{{Section: section, Label: label, Value: value}}
}

// SplitLabelValue splits text on the first colon. Text without a colon is
// returned entirely as the value with an empty label.
func SplitLabelValue(text string) (label, value string) {
	idx := strings.Index(text, ":")
	if idx < 0 {
		return "", strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:])
}

func splitAgeGender(value string) (age, gender string, ok bool) {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	age = strings.TrimSpace(parts[0])
	gender = strings.TrimSpace(parts[1])
	return age, gender, age != "" && gender != ""
}
