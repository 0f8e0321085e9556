package report

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditext/labstruct/internal/layout"
	"github.com/meditext/labstruct/internal/vocab"
)

func sampleReport() *Report {
	r := &Report{SourceImage: "report_001.jpg", ProcessedAt: testTime}
	r.setField(vocab.SectionPatient, "Patient Name", "John Doe")
	r.setField(vocab.SectionPatient, "Lab No", "2301456")
	r.setField(vocab.SectionOther, "", "End of report")
	r.Tables = []Table{{
		SectionLabel: "HAEMATOLOGY",
		Columns:      []string{"Test Name", "Result", "Unit"},
		Rows: []TableRow{
			{Cells: []layout.Cell{
				{Column: "Test Name", Text: "Hemoglobin"},
				{Column: "Result", Text: "14.2"},
				{Column: "Unit", Text: "g/dL"},
			}},
			{Cells: []layout.Cell{
				{Column: "Test Name", Text: "WBC"},
				{Column: "Result", Text: "7800"},
				{Column: "Unit", Text: ""},
			}},
		},
	}}
	r.sortSections()
	return r
}

func TestRenderMarkdown_Structure(t *testing.T) {
	md := sampleReport().RenderMarkdown()

	assert.True(t, strings.HasPrefix(md, "# Medical Report: report_001.jpg\n"))
	assert.Contains(t, md, "**Processed At:** 2024-01-02T10:45:00Z")
	assert.Contains(t, md, "## Patient Information")
	assert.Contains(t, md, "- **Patient Name:** John Doe")
	assert.Contains(t, md, "- **Lab No:** 2301456")
	assert.Contains(t, md, "## Haematology")
	assert.Contains(t, md, "| Test Name | Result | Unit |")
	assert.Contains(t, md, "|---|---|---|")
	assert.Contains(t, md, "| Hemoglobin | 14.2 | g/dL |")
}

func TestRenderMarkdown_EmptyCellsStayEmpty(t *testing.T) {
	md := sampleReport().RenderMarkdown()

	assert.Contains(t, md, "| WBC | 7800 |  |")
	assert.NotContains(t, md, "null")
	assert.NotContains(t, md, "<nil>")
}

func TestRenderMarkdown_BareValueBullet(t *testing.T) {
	md := sampleReport().RenderMarkdown()

	assert.Contains(t, md, "## Other Fields")
	assert.Contains(t, md, "- End of report\n")
	assert.NotContains(t, md, "- **:**")
}

func TestRenderMarkdown_TablesBetweenLeadAndTrailSections(t *testing.T) {
	md := sampleReport().RenderMarkdown()

	patientIdx := strings.Index(md, "## Patient Information")
	tableIdx := strings.Index(md, "## Haematology")
	otherIdx := strings.Index(md, "## Other Fields")
	require.True(t, patientIdx >= 0 && tableIdx >= 0 && otherIdx >= 0)
	assert.Less(t, patientIdx, tableIdx)
	assert.Less(t, tableIdx, otherIdx)
}

func TestRenderMarkdown_EscapesPipes(t *testing.T) {
	r := &Report{SourceImage: "x.png", ProcessedAt: testTime}
	r.Tables = []Table{{
		SectionLabel: "Results",
		Columns:      []string{"Test Name", "Result"},
		Rows: []TableRow{{Cells: []layout.Cell{
			{Column: "Test Name", Text: "A|B"},
			{Column: "Result", Text: "1"},
		}}},
	}}

	md := r.RenderMarkdown()
	assert.Contains(t, md, `A\|B`)
}

func TestRenderMarkdown_SkipsEmptySections(t *testing.T) {
	r := &Report{SourceImage: "x.png", ProcessedAt: testTime}
	r.Sections = []FieldSection{{Name: vocab.SectionPatient}}

	md := r.RenderMarkdown()
	assert.NotContains(t, md, "## Patient Information")
}

func TestRenderMarkdown_Deterministic(t *testing.T) {
	assert.Equal(t, sampleReport().RenderMarkdown(), sampleReport().RenderMarkdown())
}

// Workers render their reports concurrently; run with -race.
func TestRenderMarkdown_ConcurrentRenders(t *testing.T) {
	const workers = 8
	want := sampleReport().RenderMarkdown()

	outputs := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sampleReport()
			for j := 0; j < 25; j++ {
				outputs[i] = r.RenderMarkdown()
			}
		}(i)
	}
	wg.Wait()

	for _, out := range outputs {
		assert.Equal(t, want, out)
	}
}

func TestFieldValue(t *testing.T) {
	r := sampleReport()

	v, ok := r.FieldValue(vocab.SectionPatient, "Patient Name")
	require.True(t, ok)
	assert.Equal(t, "John Doe", v)

	_, ok = r.FieldValue(vocab.SectionPatient, "missing")
	assert.False(t, ok)
	_, ok = r.FieldValue(vocab.SectionFooter, "anything")
	assert.False(t, ok)
}
