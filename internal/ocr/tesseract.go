//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/meditext/labstruct/internal/detection"
)

// tesseractBackend wraps a gosseract client. One instance belongs to one
// worker; the underlying Tesseract API is not safe for concurrent calls.
type tesseractBackend struct {
	client *gosseract.Client
	cfg    Config
}

// New creates a Tesseract-backed OCR backend.
func New(cfg Config) (Backend, error) {
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	return &tesseractBackend{client: client, cfg: cfg}, nil
}

func (t *tesseractBackend) Recognize(ctx context.Context, img image.Image) ([]detection.RawDetection, error) {
	raw, err := t.recognizeOnce(ctx, img)
	if err != nil {
		return nil, err
	}

	// Sparse first pass: retry on a grayscale upscaled rendition and map
	// the geometry back to original coordinates.
	if len(raw) < t.cfg.RetryThreshold {
		retried, retryErr := t.recognizeOnce(ctx, preprocessForRetry(img))
		if retryErr == nil && len(retried) > len(raw) {
			rescaleDetections(retried, 1.0/retryScale)
			return retried, nil
		}
	}
	return raw, nil
}

func (t *tesseractBackend) recognizeOnce(ctx context.Context, img image.Image) ([]detection.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	raw := make([]detection.RawDetection, 0, len(boxes))
	for _, b := range boxes {
		raw = append(raw, detection.RawDetection{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Polygon: detection.QuadFromRect(
				float64(b.Box.Min.X), float64(b.Box.Min.Y),
				float64(b.Box.Max.X), float64(b.Box.Max.Y),
			),
		})
	}
	return raw, nil
}

func (t *tesseractBackend) Close() error {
	return t.client.Close()
}
