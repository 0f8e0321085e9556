package batch

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditext/labstruct/internal/detection"
	"github.com/meditext/labstruct/internal/report"
	"github.com/meditext/labstruct/internal/vocab"
)

// stubBackend returns canned detections regardless of image content.
type stubBackend struct {
	raw    []detection.RawDetection
	err    error
	closed bool
}

func (s *stubBackend) Recognize(_ context.Context, _ image.Image) ([]detection.RawDetection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path) //nolint:gosec // G304: test-controlled path
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())
}

func sampleRaw() []detection.RawDetection {
	return []detection.RawDetection{
		{Text: "Patient", Confidence: 0.95, Polygon: detection.QuadFromRect(10, 10, 80, 26)},
		{Text: "Name:", Confidence: 0.94, Polygon: detection.QuadFromRect(85, 10, 135, 26)},
		{Text: "John", Confidence: 0.93, Polygon: detection.QuadFromRect(145, 10, 185, 26)},
		{Text: "Test Name", Confidence: 0.96, Polygon: detection.QuadFromRect(10, 50, 120, 66)},
		{Text: "Result", Confidence: 0.95, Polygon: detection.QuadFromRect(200, 50, 280, 66)},
		{Text: "Hemoglobin", Confidence: 0.97, Polygon: detection.QuadFromRect(10, 90, 110, 106)},
		{Text: "14.2", Confidence: 0.92, Polygon: detection.QuadFromRect(210, 90, 250, 106)},
	}
}

func testPipeline(t *testing.T, cfg *Config) *Pipeline {
	t.Helper()
	p := NewPipeline(cfg, vocab.Default())
	p.now = func() time.Time { return time.Date(2024, 1, 2, 10, 45, 0, 0, time.UTC) }
	return p
}

func TestPipeline_BuildReport(t *testing.T) {
	p := testPipeline(t, DefaultConfig())

	env, err := p.BuildReport(sampleRaw(), "scan.png", time.Date(2024, 1, 2, 10, 45, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "scan.png", env.SourceImage)
	assert.Len(t, env.Detections, 7)

	name, ok := env.Report.FieldValue(vocab.SectionPatient, "Patient Name")
	require.True(t, ok)
	assert.Equal(t, "John", name)

	require.Len(t, env.Report.Tables, 1)
	assert.Equal(t, []string{"Test Name", "Result"}, env.Report.Tables[0].Columns)
}

func TestPipeline_BuildReport_Deterministic(t *testing.T) {
	p := testPipeline(t, DefaultConfig())
	at := time.Date(2024, 1, 2, 10, 45, 0, 0, time.UTC)

	first, err := p.BuildReport(sampleRaw(), "scan.png", at)
	require.NoError(t, err)
	second, err := p.BuildReport(sampleRaw(), "scan.png", at)
	require.NoError(t, err)

	a, err := first.EncodeJSON()
	require.NoError(t, err)
	b, err := second.EncodeJSON()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPipeline_BuildReport_IngestFailure(t *testing.T) {
	p := testPipeline(t, DefaultConfig())
	raw := []detection.RawDetection{{Text: "bad", Confidence: 0.9, Polygon: nil}}

	_, err := p.BuildReport(raw, "scan.png", time.Now())
	var ingestErr *detection.IngestError
	require.ErrorAs(t, err, &ingestErr)
}

func TestPipeline_BuildReport_ConfidenceFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.95
	p := testPipeline(t, cfg)

	env, err := p.BuildReport(sampleRaw(), "scan.png", time.Now())
	require.NoError(t, err)
	for _, d := range env.Detections {
		assert.GreaterOrEqual(t, d.Confidence, 0.95)
	}
}

func TestPipeline_ProcessFile_WritesBothSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.JSONDir = filepath.Join(dir, "json")
	cfg.MarkdownDir = filepath.Join(dir, "md")
	require.NoError(t, cfg.EnsureOutputDirs())

	imgPath := filepath.Join(dir, "scan.png")
	writePNG(t, imgPath)

	p := testPipeline(t, cfg)
	backend := &stubBackend{raw: sampleRaw()}

	env, err := p.ProcessFile(context.Background(), backend, imgPath)
	require.NoError(t, err)
	assert.Equal(t, "scan.png", env.SourceImage)

	data, err := os.ReadFile(filepath.Join(cfg.JSONDir, "scan.json"))
	require.NoError(t, err)
	var decoded report.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "scan.png", decoded.SourceImage)
	assert.Len(t, decoded.Detections, 7)

	md, err := os.ReadFile(filepath.Join(cfg.MarkdownDir, "scan.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Medical Report: scan.png")
}

func TestPipeline_ProcessFile_RawSink(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.JSONDir = filepath.Join(dir, "json")
	cfg.MarkdownDir = filepath.Join(dir, "md")
	cfg.RawDir = filepath.Join(dir, "raw")
	require.NoError(t, cfg.EnsureOutputDirs())

	imgPath := filepath.Join(dir, "scan.png")
	writePNG(t, imgPath)

	p := testPipeline(t, cfg)
	_, err := p.ProcessFile(context.Background(), &stubBackend{raw: sampleRaw()}, imgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.RawDir, "scan_raw.json"))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "scan.png", raw["image_name"])
	assert.Len(t, raw["raw_result"], 7)
}

func TestPipeline_ProcessFile_UnreadableImage(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.JSONDir = filepath.Join(dir, "json")
	cfg.MarkdownDir = filepath.Join(dir, "md")

	badPath := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(badPath, []byte("not a png"), 0o600))

	p := testPipeline(t, cfg)
	_, err := p.ProcessFile(context.Background(), &stubBackend{raw: sampleRaw()}, badPath)
	require.Error(t, err)
}

func TestPipeline_ProcessFile_BackendFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.JSONDir = filepath.Join(dir, "json")
	cfg.MarkdownDir = filepath.Join(dir, "md")

	imgPath := filepath.Join(dir, "scan.png")
	writePNG(t, imgPath)

	p := testPipeline(t, cfg)
	_, err := p.ProcessFile(context.Background(), &stubBackend{err: errors.New("engine crashed")}, imgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR failed")
}
