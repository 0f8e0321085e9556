package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meditext/labstruct/internal/ocr"
	"github.com/meditext/labstruct/internal/vocab"
)

// errUnprocessed marks placeholder results for images whose jobs never ran.
var errUnprocessed = errors.New("image was not processed")

// BackendFactory creates one OCR backend per worker; backends are not
// shared between workers because the underlying engine is single-threaded.
type BackendFactory func() (ocr.Backend, error)

// Runner executes a batch over a worker pool.
type Runner struct {
	cfg        *Config
	pipeline   *Pipeline
	newBackend BackendFactory
}

// NewRunner creates a batch runner. The vocabulary is shared read-only
// between all workers.
func NewRunner(cfg *Config, v *vocab.Vocabulary, factory BackendFactory) *Runner {
	return &Runner{
		cfg:        cfg,
		pipeline:   NewPipeline(cfg, v),
		newBackend: factory,
	}
}

type imageJob struct {
	index int
	path  string
}

type imageResult struct {
	index int
	path  string
	err   error
}

// Run discovers input images and processes them in parallel. A failure of
// one image is recorded in the summary and processing continues; only an
// unusable OCR backend at start-up aborts the batch before any image is
// processed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := discoverImageFiles(r.cfg.Inputs, r.cfg.Recursive, r.cfg.IncludePatterns, r.cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	if err := r.cfg.EnsureOutputDirs(); err != nil {
		return nil, err
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	backends, err := r.createBackends(workers)
	if err != nil {
		return nil, err
	}
	defer closeBackends(backends)

	start := time.Now()
	results := r.processParallel(ctx, files, backends)

	summary := &Summary{
		RunID:    uuid.NewString(),
		Total:    len(files),
		Workers:  workers,
		Duration: time.Since(start),
	}
	for _, res := range results {
		if res.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Path: res.path, Reason: res.err.Error()})
		} else {
			summary.Processed++
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// createBackends builds one backend per worker. Any failure here is fatal:
// the engine is unavailable, so the batch aborts before processing.
func (r *Runner) createBackends(workers int) ([]ocr.Backend, error) {
	backends := make([]ocr.Backend, 0, workers)
	for i := 0; i < workers; i++ {
		b, err := r.newBackend()
		if err != nil {
			closeBackends(backends)
			return nil, fmt.Errorf("failed to initialize OCR backend: %w", err)
		}
		backends = append(backends, b)
	}
	return backends, nil
}

func closeBackends(backends []ocr.Backend) {
	for _, b := range backends {
		if err := b.Close(); err != nil {
			slog.Warn("failed to close OCR backend", "error", err)
		}
	}
}

// processParallel fans image paths out to the worker pool and collects
// per-image results in input order.
func (r *Runner) processParallel(ctx context.Context, files []string, backends []ocr.Backend) []imageResult {
	jobs := make(chan imageJob, len(files))
	results := make(chan imageResult, len(files))

	var wg sync.WaitGroup
	for _, backend := range backends {
		wg.Add(1)
		go r.worker(ctx, backend, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case jobs <- imageJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]imageResult, len(files))
	for i, path := range files {
		ordered[i] = imageResult{index: i, path: path, err: errUnprocessed}
	}
	for res := range results {
		ordered[res.index] = res
	}

	// Jobs the pool never ran keep their placeholder; attribute them to
	// the cancellation that stopped the pool so they are never counted
	// as processed.
	for i := range ordered {
		if errors.Is(ordered[i].err, errUnprocessed) {
			if err := ctx.Err(); err != nil {
				ordered[i].err = err
			}
		}
	}
	return ordered
}

// worker processes images from the jobs channel with its own backend.
func (r *Runner) worker(ctx context.Context, backend ocr.Backend,
	jobs <-chan imageJob, results chan<- imageResult, wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}

			_, err := r.pipeline.ProcessFile(ctx, backend, job.path)
			if err != nil {
				slog.Warn("image processing failed", "file", job.path, "error", err)
			}

			select {
			case results <- imageResult{index: job.index, path: job.path, err: err}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
