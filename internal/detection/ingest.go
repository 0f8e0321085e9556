package detection

import (
	"fmt"
	"math"
	"strings"
)

// RawDetection is the OCR backend's view of a recognized fragment before
// normalization. The backend contract is four or more finite polygon points
// with confidence in [0,1].
type RawDetection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Polygon    []Point `json:"polygon"`
}

// IngestError represents malformed geometry returned by the OCR backend.
// An IngestError fails the whole image; the batch driver records it and
// continues with the remaining images.
type IngestError struct {
	Index  int
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest error at detection %d: %s", e.Index, e.Reason)
}

// IngestOptions tunes ingestion behavior.
type IngestOptions struct {
	// MinConfidence drops detections below this floor. The default of 0
	// keeps every detection with non-empty text; no silent accuracy-based
	// filtering is applied unless configured.
	MinConfidence float64
}

// DefaultIngestOptions returns ingestion defaults.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{MinConfidence: 0}
}

// Ingest validates and normalizes raw backend output into a flat,
// order-independent set of Detection records. Detections with empty text
// are discarded; malformed geometry yields an *IngestError.
func Ingest(raw []RawDetection, opts IngestOptions) ([]Detection, error) {
	out := make([]Detection, 0, len(raw))
	for i, r := range raw {
		if err := validateGeometry(r.Polygon, i); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if opts.MinConfidence > 0 && r.Confidence < opts.MinConfidence {
			continue
		}
		out = append(out, Detection{
			Text:       text,
			Confidence: r.Confidence,
			Polygon:    append([]Point(nil), r.Polygon...),
			Index:      len(out),
		})
	}
	return out, nil
}

func validateGeometry(polygon []Point, index int) error {
	if len(polygon) < 4 {
		return &IngestError{Index: index, Reason: fmt.Sprintf("polygon has %d points, need at least 4", len(polygon))}
	}
	for _, p := range polygon {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return &IngestError{Index: index, Reason: "non-finite polygon coordinate"}
		}
	}
	return nil
}

// QuadFromRect builds a 4-point polygon from axis-aligned bounds, the shape
// produced by word-level OCR backends.
func QuadFromRect(minX, minY, maxX, maxY float64) []Point {
	return []Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}
