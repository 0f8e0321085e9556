// Package detection defines the normalized OCR detection record and the
// ingestor that converts raw backend output into it.
package detection

import (
	"math"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one OCR-recognized text fragment with confidence and
// bounding geometry. Immutable once produced by Ingest; Index preserves
// the backend's original emission order for stable tie-breaking.
type Detection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Polygon    []Point `json:"polygon"`
	Index      int     `json:"index"`
}

// Box is the axis-aligned bounding box of the detection polygon.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Bounds computes the axis-aligned bounding box of the polygon.
func (d Detection) Bounds() Box {
	b := Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range d.Polygon {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// CenterX returns the horizontal center of the detection.
func (d Detection) CenterX() float64 {
	b := d.Bounds()
	return (b.MinX + b.MaxX) / 2
}

// CenterY returns the vertical center of the detection.
func (d Detection) CenterY() float64 {
	b := d.Bounds()
	return (b.MinY + b.MaxY) / 2
}

// LeftX returns the leftmost x coordinate.
func (d Detection) LeftX() float64 { return d.Bounds().MinX }

// RightX returns the rightmost x coordinate.
func (d Detection) RightX() float64 { return d.Bounds().MaxX }

// Height returns the vertical extent of the detection.
func (d Detection) Height() float64 { return d.Bounds().Height() }

// MedianHeight returns the median detection height, used to derive the
// adaptive row-clustering tolerance. Returns 0 for an empty slice.
func MedianHeight(dets []Detection) float64 {
	if len(dets) == 0 {
		return 0
	}
	heights := make([]float64, len(dets))
	for i, d := range dets {
		heights[i] = d.Height()
	}
	sortFloats(heights)
	mid := len(heights) / 2
	if len(heights)%2 == 1 {
		return heights[mid]
	}
	return (heights[mid-1] + heights[mid]) / 2
}

func sortFloats(v []float64) {
	// insertion sort; detection counts per image are small
	for i := 1; i < len(v); i++ {
		x := v[i]
		j := i - 1
		for j >= 0 && v[j] > x {
			v[j+1] = v[j]
			j--
		}
		v[j+1] = x
	}
}
