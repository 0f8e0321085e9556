package layout

import (
	"math"
	"strings"

	"github.com/meditext/labstruct/internal/detection"
)

// ColumnBand is the x-range one column occupies, inferred from a header
// detection.
type ColumnBand struct {
	Name string
	MinX float64
	MaxX float64
}

// Center returns the horizontal center of the band.
func (b ColumnBand) Center() float64 { return (b.MinX + b.MaxX) / 2 }

// ColumnTemplate is the x-axis partitioning of a table inferred from its
// header row. It persists only for the lifetime of one table region.
type ColumnTemplate struct {
	Columns []ColumnBand
}

// Cell is one column's content in an aligned table row. LowConfidence marks
// cells that received a detection overlapping no column band; such
// detections are placed by nearest center distance instead of dropped.
type Cell struct {
	Column        string `json:"column"`
	Text          string `json:"text"`
	LowConfidence bool   `json:"low_confidence_alignment,omitempty"`
}

// AlignedRow holds one data row distributed over the template's columns.
// Cells are ordered like the template; columns without a detection hold an
// empty string.
type AlignedRow struct {
	Cells []Cell
}

// Cell returns the text for the named column, or "" if absent.
func (r AlignedRow) Cell(column string) string {
	for _, c := range r.Cells {
		if c.Column == column {
			return c.Text
		}
	}
	return ""
}

// Align assigns each detection of a data row to a column. The column with
// maximal horizontal overlap wins; ties break by nearest column-center
// distance. A detection overlapping no band goes to the nearest column by
// center distance and is flagged. Multiple detections landing in one column
// are concatenated left to right with single spaces; no attempt is made to
// decide which concatenation is "correct" for merged or split OCR tokens.
func (t *ColumnTemplate) Align(row Row) AlignedRow {
	cells := make([]Cell, len(t.Columns))
	for i, col := range t.Columns {
		cells[i].Column = col.Name
	}

	for _, d := range row.Detections {
		b := d.Bounds()
		idx, overlap := t.bestOverlap(b.MinX, b.MaxX)
		flagged := false
		if overlap <= 0 {
			idx = t.nearestByCenter((b.MinX + b.MaxX) / 2)
			flagged = true
		}
		appendCell(&cells[idx], d, flagged)
	}
	return AlignedRow{Cells: cells}
}

func appendCell(c *Cell, d detection.Detection, flagged bool) {
	if c.Text == "" {
		c.Text = d.Text
	} else {
		c.Text += " " + d.Text
	}
	if flagged {
		c.LowConfidence = true
	}
}

// bestOverlap returns the index of the band with maximal horizontal overlap
// with [minX, maxX] and the overlap amount. Ties break by nearest center.
func (t *ColumnTemplate) bestOverlap(minX, maxX float64) (int, float64) {
	center := (minX + maxX) / 2
	bestIdx, bestOverlap := -1, 0.0
	bestDist := math.Inf(1)
	for i, col := range t.Columns {
		overlap := math.Min(maxX, col.MaxX) - math.Max(minX, col.MinX)
		if overlap < 0 {
			overlap = 0
		}
		dist := math.Abs(center - col.Center())
		if overlap > bestOverlap || (overlap == bestOverlap && dist < bestDist) {
			bestIdx, bestOverlap, bestDist = i, overlap, dist
		}
	}
	return bestIdx, bestOverlap
}

// nearestByCenter returns the index of the band whose center is closest to x.
func (t *ColumnTemplate) nearestByCenter(x float64) int {
	bestIdx := 0
	bestDist := math.Inf(1)
	for i, col := range t.Columns {
		if d := math.Abs(x - col.Center()); d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	return bestIdx
}

// isNumeric reports whether text reads as a plain number, tolerating
// attached arrows and stray unit suffixes the OCR sometimes merges in.
func isNumeric(text string) bool {
	s := strings.TrimSpace(strings.Trim(text, "↑↓"))
	for _, suffix := range []string{"g/dl", "g/dL", "%", "fl", "pg"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		case (r == '+' || r == '-') && i == 0:
		default:
			return false
		}
	}
	return true
}

// isReferenceRange reports whether text looks like "13 - 17" or "4.5-11.0".
func isReferenceRange(text string) bool {
	if !strings.Contains(text, "-") {
		return false
	}
	hasDigit := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	parts := strings.SplitN(text, "-", 2)
	return strings.TrimSpace(parts[0]) != "" || strings.TrimSpace(parts[1]) != ""
}
