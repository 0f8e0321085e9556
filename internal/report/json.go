package report

import (
	"encoding/json"
)

// EncodeJSON serializes the complete structured output with stable
// two-space indentation, so identical inputs produce byte-identical files.
func (e *Envelope) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// EncodeJSON serializes the report alone.
func (r *Report) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
