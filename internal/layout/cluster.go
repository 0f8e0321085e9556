// Package layout implements the layout-reconstruction engine: it groups
// unordered OCR detections into reading-order rows, classifies rows as
// table headers, table data, section labels, or freeform text, and aligns
// table-row detections to columns inferred from header geometry.
package layout

import (
	"sort"

	"github.com/meditext/labstruct/internal/detection"
)

// DefaultToleranceFactor scales the median detection height into the
// vertical tolerance used when growing a row band. Proportional tolerance
// adapts to varying font sizes across documents; a fixed pixel threshold
// does not survive scale variation between scans.
const DefaultToleranceFactor = 0.6

// Row is a horizontal band of detections judged to belong to the same text
// line, ordered left to right.
type Row struct {
	Detections []detection.Detection
	YMin       float64
	YMax       float64
	Kind       RowKind
}

// Text joins the row's detection texts left to right with single spaces.
func (r Row) Text() string {
	out := ""
	for i, d := range r.Detections {
		if i > 0 {
			out += " "
		}
		out += d.Text
	}
	return out
}

// Cluster groups detections into rows by vertical proximity, independent of
// input order. Detections are sorted by vertical center (stable on original
// index), then swept once: a detection joins the open row while its center
// falls inside the row's y-band expanded by toleranceFactor times the median
// detection height. Every detection lands in exactly one row.
func Cluster(dets []detection.Detection, toleranceFactor float64) []Row {
	if len(dets) == 0 {
		return nil
	}
	if toleranceFactor <= 0 {
		toleranceFactor = DefaultToleranceFactor
	}
	tolerance := toleranceFactor * detection.MedianHeight(dets)

	sorted := make([]detection.Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].CenterY(), sorted[j].CenterY()
		if yi != yj {
			return yi < yj
		}
		return sorted[i].Index < sorted[j].Index
	})

	var rows []Row
	open := newOpenRow(sorted[0])
	for _, d := range sorted[1:] {
		cy := d.CenterY()
		if cy >= open.YMin-tolerance && cy <= open.YMax+tolerance {
			open.add(d)
			continue
		}
		rows = append(rows, open.finalize())
		open = newOpenRow(d)
	}
	rows = append(rows, open.finalize())
	return rows
}

// openRow is the sweep's single piece of clustering state: the row currently
// accepting members, with a y-band equal to the union of member extents.
type openRow struct {
	members []detection.Detection
	YMin    float64
	YMax    float64
}

func newOpenRow(d detection.Detection) *openRow {
	b := d.Bounds()
	return &openRow{members: []detection.Detection{d}, YMin: b.MinY, YMax: b.MaxY}
}

func (o *openRow) add(d detection.Detection) {
	b := d.Bounds()
	if b.MinY < o.YMin {
		o.YMin = b.MinY
	}
	if b.MaxY > o.YMax {
		o.YMax = b.MaxY
	}
	o.members = append(o.members, d)
}

func (o *openRow) finalize() Row {
	sort.SliceStable(o.members, func(i, j int) bool {
		xi, xj := o.members[i].LeftX(), o.members[j].LeftX()
		if xi != xj {
			return xi < xj
		}
		return o.members[i].Index < o.members[j].Index
	})
	return Row{Detections: o.members, YMin: o.YMin, YMax: o.YMax, Kind: KindUnknown}
}
