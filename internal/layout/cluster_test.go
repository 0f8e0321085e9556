package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditext/labstruct/internal/detection"
)

// d builds a detection with rectangular geometry for layout tests.
func d(text string, minX, minY, maxX, maxY float64, index int) detection.Detection {
	return detection.Detection{
		Text:       text,
		Confidence: 0.9,
		Polygon:    detection.QuadFromRect(minX, minY, maxX, maxY),
		Index:      index,
	}
}

func rowTexts(rows []Row) []string {
	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.Text()
	}
	return texts
}

func TestCluster_Empty(t *testing.T) {
	assert.Nil(t, Cluster(nil, DefaultToleranceFactor))
}

func TestCluster_SingleRow(t *testing.T) {
	dets := []detection.Detection{
		d("Hemoglobin", 10, 100, 120, 120, 0),
		d("14.2", 200, 102, 240, 118, 1),
		d("g/dL", 300, 101, 340, 119, 2),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hemoglobin 14.2 g/dL", rows[0].Text())
}

func TestCluster_SeparateRows(t *testing.T) {
	dets := []detection.Detection{
		d("Hemoglobin", 10, 100, 120, 120, 0),
		d("14.2", 200, 102, 240, 118, 1),
		d("WBC", 10, 160, 60, 180, 2),
		d("7800", 200, 161, 250, 179, 3),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Hemoglobin 14.2", "WBC 7800"}, rowTexts(rows))
}

func TestCluster_InputOrderIndependent(t *testing.T) {
	dets := []detection.Detection{
		d("Hemoglobin", 10, 100, 120, 120, 0),
		d("14.2", 200, 102, 240, 118, 1),
		d("WBC", 10, 160, 60, 180, 2),
		d("7800", 200, 161, 250, 179, 3),
		d("Platelets", 10, 220, 110, 240, 4),
		d("2.5", 200, 221, 230, 239, 5),
	}
	want := rowTexts(Cluster(dets, DefaultToleranceFactor))

	// The backend emits detections in arbitrary order; clustering must not
	// depend on it.
	permutations := [][]int{
		{5, 4, 3, 2, 1, 0},
		{2, 5, 0, 3, 1, 4},
		{1, 0, 5, 2, 4, 3},
	}
	for _, perm := range permutations {
		shuffled := make([]detection.Detection, len(dets))
		for i, j := range perm {
			shuffled[i] = dets[j]
		}
		assert.Equal(t, want, rowTexts(Cluster(shuffled, DefaultToleranceFactor)))
	}
}

func TestCluster_EveryDetectionInExactlyOneRow(t *testing.T) {
	dets := []detection.Detection{
		d("a", 10, 10, 40, 26, 0),
		d("b", 60, 12, 90, 28, 1),
		d("c", 10, 50, 40, 66, 2),
		d("d", 60, 48, 90, 64, 3),
		d("e", 10, 90, 40, 106, 4),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	seen := make(map[int]int)
	total := 0
	for _, row := range rows {
		for _, det := range row.Detections {
			seen[det.Index]++
			total++
		}
	}
	assert.Equal(t, len(dets), total)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "detection %d must land in exactly one row", idx)
	}
}

func TestCluster_RowsOrderedTopToBottom(t *testing.T) {
	dets := []detection.Detection{
		d("bottom", 10, 200, 80, 216, 0),
		d("top", 10, 10, 50, 26, 1),
		d("middle", 10, 100, 90, 116, 2),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"top", "middle", "bottom"}, rowTexts(rows))
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].YMin, rows[i].YMin)
	}
}

func TestCluster_LeftToRightWithinRow(t *testing.T) {
	dets := []detection.Detection{
		d("third", 300, 100, 360, 116, 0),
		d("first", 10, 100, 70, 116, 1),
		d("second", 150, 100, 220, 116, 2),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	require.Len(t, rows, 1)
	assert.Equal(t, "first second third", rows[0].Text())
}

func TestCluster_ToleranceAdaptsToFontSize(t *testing.T) {
	// Large glyphs with a 12px center offset between fragments: a fixed
	// small threshold would split them, proportional tolerance keeps them
	// together.
	large := []detection.Detection{
		d("CITY", 10, 100, 120, 160, 0),
		d("HOSPITAL", 140, 112, 300, 172, 1),
	}
	rows := Cluster(large, DefaultToleranceFactor)
	require.Len(t, rows, 1)
	assert.Equal(t, "CITY HOSPITAL", rows[0].Text())

	// The same 12px offset with small glyphs is a genuine row break.
	small := []detection.Detection{
		d("name", 10, 100, 50, 110, 0),
		d("value", 60, 112, 110, 122, 1),
	}
	rows = Cluster(small, DefaultToleranceFactor)
	assert.Len(t, rows, 2)
}

func TestCluster_BandGrowsWithMembers(t *testing.T) {
	// A slightly slanted line: each fragment is a bit lower than the last.
	// The union band lets the chain stay one row.
	dets := []detection.Detection{
		d("a", 10, 100, 50, 116, 0),
		d("b", 60, 104, 100, 120, 1),
		d("c", 110, 108, 150, 124, 2),
		d("d", 160, 112, 200, 128, 3),
	}

	rows := Cluster(dets, DefaultToleranceFactor)
	require.Len(t, rows, 1)
	assert.Equal(t, "a b c d", rows[0].Text())
}

func TestRow_Text(t *testing.T) {
	assert.Equal(t, "", Row{}.Text())
	r := Row{Detections: []detection.Detection{d("only", 0, 0, 10, 10, 0)}}
	assert.Equal(t, "only", r.Text())
}
