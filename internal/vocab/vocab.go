// Package vocab provides the read-only vocabulary tables used for row
// classification and field sectioning: table column synonyms, field label
// keyword lists, and section heading names. A Vocabulary is loaded once at
// start-up and shared by reference between workers; it is never mutated.
package vocab

import (
	"strings"
)

// Section names a grouping of fields in the assembled report.
type Section string

// Report sections in their rendering order.
const (
	SectionPatient Section = "Patient Information"
	SectionLab     Section = "Laboratory Information"
	SectionFooter  Section = "Footer Information"
	SectionOther   Section = "Other Fields"
)

// Column defines one canonical table column and the header keywords that
// identify it, matched case-insensitively as substrings.
type Column struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Vocabulary holds all lookup tables. Keyword matching is always
// case-insensitive substring matching, following the source data where
// headers appear as "REF. RANGE", "Reference Range", or "Normal Range"
// depending on the issuing laboratory.
type Vocabulary struct {
	Columns       []Column            `yaml:"columns"`
	PatientFields map[string][]string `yaml:"patient_fields"`
	LabFields     map[string][]string `yaml:"lab_fields"`
	FooterFields  map[string][]string `yaml:"footer_fields"`
	Headings      []string            `yaml:"headings"`
	Units         []string            `yaml:"units"`
}

// Default returns the built-in vocabulary covering the lab report formats
// seen in the sample corpus.
func Default() *Vocabulary {
	return &Vocabulary{
		Columns: []Column{
			{Name: "Test Name", Keywords: []string{
				"test name", "test description", "investigation", "test",
			}},
			{Name: "Observed Value", Keywords: []string{
				"observed value", "result", "value",
			}},
			{Name: "Unit", Keywords: []string{
				"unit", "units",
			}},
			{Name: "Reference Range", Keywords: []string{
				"reference range", "ref. range", "ref range", "normal range",
				"biological reference interval",
			}},
		},
		PatientFields: map[string][]string{
			"patient_id":       {"patient id", "patient no", "lab no", "result no", "booking no"},
			"patient_name":     {"patient name", "name", "user"},
			"age":              {"age"},
			"gender":           {"gender", "sex"},
			"age_gender":       {"age/gender", "age/sex"},
			"collection_date":  {"collection date", "sample collected", "received date"},
			"report_date":      {"report date", "reporting date", "results saved", "release date"},
			"referring_doctor": {"referred by", "referring doctor", "consultant"},
			"phone":            {"phone", "mobile", "phone no"},
			"specimen":         {"specimen"},
			"ward_bed":         {"ward", "bed"},
			"report_id":        {"report id"},
		},
		LabFields: map[string][]string{
			"name":        {"laboratory", "pathology", "diagnostic", "medical", "foundation", "clinic", "centre"},
			"address":     {"address"},
			"phone":       {"tel", "telephone"},
			"email":       {"email", "@"},
			"website":     {"www", "http"},
			"phcr_number": {"phcr"},
		},
		FooterFields: map[string][]string{
			"doctor_name":    {"dr.", "doctor"},
			"qualification":  {"mbbs", "md", "dcp", "phd"},
			"registration":   {"registration", "reg no", "reg. no"},
			"lab_technician": {"lab technician", "technician"},
			"printed_by":     {"printed by"},
			"printed_on":     {"printed on"},
		},
		Headings: []string{
			"haematology", "hematology", "complete blood count", "cbc",
			"blood indices", "rbc indices", "platelets indices",
			"differential count", "absolute leucocyte count", "morphology",
		},
		Units: []string{
			"g/dl", "g/l", "%", "fl", "pg", "/ul", "/cumm", "/l",
			"million/ul", "x103", "x10^3", "cells/ul", "lakhs", "cmm", "mill/cumm",
		},
	}
}

// MatchColumn returns the canonical column name whose keywords match text,
// if any.
func (v *Vocabulary) MatchColumn(text string) (string, bool) {
	n := normalize(text)
	for _, col := range v.Columns {
		if matchesAny(n, col.Keywords) {
			return col.Name, true
		}
	}
	return "", false
}

// ColumnCount returns the number of canonical table columns.
func (v *Vocabulary) ColumnCount() int { return len(v.Columns) }

// FieldSection resolves a field label to its report section. Unmatched
// labels belong to SectionOther; they are kept, never dropped.
func (v *Vocabulary) FieldSection(label string) Section {
	n := normalize(label)
	if matchesAnyList(n, v.PatientFields) {
		return SectionPatient
	}
	if matchesAnyList(n, v.LabFields) {
		return SectionLab
	}
	if matchesAnyList(n, v.FooterFields) {
		return SectionFooter
	}
	return SectionOther
}

// IsAgeGenderLabel reports whether the label names a combined age/gender
// field, which the extractor splits on "/".
func (v *Vocabulary) IsAgeGenderLabel(label string) bool {
	return matchesAny(normalize(label), v.PatientFields["age_gender"])
}

// IsHeading reports whether text names a known report section heading.
func (v *Vocabulary) IsHeading(text string) bool {
	return matchesAny(normalize(text), v.Headings)
}

// IsUnit reports whether text looks like a measurement unit.
func (v *Vocabulary) IsUnit(text string) bool {
	return matchesAny(normalize(text), v.Units)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchesAny(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func matchesAnyList(normalized string, fields map[string][]string) bool {
	for _, keywords := range fields {
		if matchesAny(normalized, keywords) {
			return true
		}
	}
	return false
}
