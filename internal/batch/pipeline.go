package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/meditext/labstruct/internal/detection"
	"github.com/meditext/labstruct/internal/extract"
	"github.com/meditext/labstruct/internal/imageio"
	"github.com/meditext/labstruct/internal/layout"
	"github.com/meditext/labstruct/internal/ocr"
	"github.com/meditext/labstruct/internal/report"
	"github.com/meditext/labstruct/internal/vocab"
)

// Pipeline bundles the read-only stages shared by all workers: vocabulary,
// classifier, and extractor. It carries no per-image state, so one pipeline
// serves every concurrent worker.
type Pipeline struct {
	cfg        *Config
	classifier *layout.Classifier
	extractor  *extract.Extractor
	now        func() time.Time
}

// NewPipeline builds the shared pipeline stages over a vocabulary.
func NewPipeline(cfg *Config, v *vocab.Vocabulary) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: layout.NewClassifier(v),
		extractor:  extract.New(v),
		now:        time.Now,
	}
}

// BuildReport runs the pure core on a raw detection set: ingest, cluster,
// classify, assemble. Deterministic for the same detections and timestamp.
func (p *Pipeline) BuildReport(raw []detection.RawDetection, source string, processedAt time.Time) (*report.Envelope, error) {
	dets, err := detection.Ingest(raw, detection.IngestOptions{MinConfidence: p.cfg.MinConfidence})
	if err != nil {
		return nil, err
	}

	rows := layout.Cluster(dets, p.cfg.ToleranceFactor)
	classified := p.classifier.Classify(rows)
	rep := report.Assemble(classified, p.extractor, source, processedAt)

	return &report.Envelope{
		SourceImage: source,
		ProcessedAt: processedAt,
		Detections:  dets,
		Report:      rep,
	}, nil
}

// ProcessFile runs the full per-image pipeline: load, recognize, build,
// write both sinks. The returned error covers exactly this image.
func (p *Pipeline) ProcessFile(ctx context.Context, backend ocr.Backend, path string) (*report.Envelope, error) {
	img, _, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}

	raw, err := backend.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("OCR failed for %s: %w", path, err)
	}

	env, err := p.BuildReport(raw, filepath.Base(path), p.now())
	if err != nil {
		return nil, err
	}

	if err := p.writeOutputs(env, raw, path); err != nil {
		return nil, err
	}
	return env, nil
}
