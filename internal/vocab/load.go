package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a vocabulary overlay from a YAML file and merges it over the
// built-in defaults. Only non-empty sections of the file replace their
// default counterparts, so a file may override just the column synonyms.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: vocabulary path comes from CLI/config
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var overlay Vocabulary
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	v := Default()
	merge(v, &overlay)
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}
	return v, nil
}

func merge(base, overlay *Vocabulary) {
	if len(overlay.Columns) > 0 {
		base.Columns = overlay.Columns
	}
	if len(overlay.PatientFields) > 0 {
		base.PatientFields = overlay.PatientFields
	}
	if len(overlay.LabFields) > 0 {
		base.LabFields = overlay.LabFields
	}
	if len(overlay.FooterFields) > 0 {
		base.FooterFields = overlay.FooterFields
	}
	if len(overlay.Headings) > 0 {
		base.Headings = overlay.Headings
	}
	if len(overlay.Units) > 0 {
		base.Units = overlay.Units
	}
}

// Validate checks the vocabulary is usable for classification.
func (v *Vocabulary) Validate() error {
	if len(v.Columns) < 2 {
		return fmt.Errorf("need at least 2 columns, got %d", len(v.Columns))
	}
	for i, col := range v.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if len(col.Keywords) == 0 {
			return fmt.Errorf("column %q has no keywords", col.Name)
		}
	}
	return nil
}
