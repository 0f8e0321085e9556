// Package ocr defines the boundary to the OCR engine. The core layout
// engine consumes the detections this package produces and is agnostic to
// which model produced them.
//
// The default backend wraps the Tesseract engine via gosseract and is
// compiled in with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag, constructing a backend fails with ErrBackendUnavailable,
// which aborts a batch before any image is processed.
package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/meditext/labstruct/internal/detection"
)

// ErrBackendUnavailable is returned when no OCR engine is compiled in or
// the engine fails to initialize at start-up.
var ErrBackendUnavailable = errors.New("OCR backend unavailable")

// Backend produces spatially positioned text detections for an image.
// Implementations must be safe for use from a single worker at a time;
// callers hand each backend instance to exactly one worker.
type Backend interface {
	// Recognize runs OCR on the image and returns raw detections in the
	// engine's native emission order.
	Recognize(ctx context.Context, img image.Image) ([]detection.RawDetection, error)

	// Close releases engine resources.
	Close() error
}

// Config holds OCR backend settings.
type Config struct {
	// Language is the recognition language passed to the engine ("eng" by
	// default; multiple languages joined with "+").
	Language string

	// RetryThreshold triggers a preprocess-and-retry pass when the first
	// recognition yields fewer detections than this. Low-resolution
	// photographed reports often need the upscaled retry.
	RetryThreshold int
}

// DefaultConfig returns backend defaults.
func DefaultConfig() Config {
	return Config{
		Language:       "eng",
		RetryThreshold: 2,
	}
}
