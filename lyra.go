// Package lyra provides a fluent API for turning scanned chord chart images
// into structured chart layouts.
//
// Basic usage:
//
//	structure, err := lyra.New(recognizer).Analyze(ctx, img, 1)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	structure, err := lyra.New(recognizer).
//	    SkipEnhancement().
//	    AnalyzerConfig(cfg).
//	    Analyze(ctx, img, 1)
//
// For advanced use cases, the lower-level quality, layout, and batch packages
// are also available.
package lyra

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ColbyCorcoran/Lyra-sub006/batch"
	"github.com/ColbyCorcoran/Lyra-sub006/layout"
	"github.com/ColbyCorcoran/Lyra-sub006/model"
	"github.com/ColbyCorcoran/Lyra-sub006/quality"
)

// ErrNoRecognizer is returned when a pipeline is used without a recognizer.
var ErrNoRecognizer = errors.New("no recognizer configured")

// Recognizer converts an image into positioned text blocks. The ocr package
// provides a Tesseract-backed implementation behind the "ocr" build tag.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]model.TextBlock, error)
}

// Pipeline runs the chart scanning stages in order: conditional image
// enhancement, text recognition, then layout analysis. Configure it with the
// fluent option methods, then call Analyze or AnalyzeBatch.
type Pipeline struct {
	recognizer Recognizer
	options    scanOptions
}

// New creates a Pipeline around the given recognizer for fluent configuration.
//
// Example:
//
//	structure, err := lyra.New(recognizer).Analyze(ctx, img, 1)
func New(recognizer Recognizer) *Pipeline {
	return &Pipeline{
		recognizer: recognizer,
		options:    defaultScanOptions(),
	}
}

// Analyze runs the full pipeline on one image and returns its chart
// structure. Recognition yielding no text is reported as an error wrapping
// batch.ErrNoTextFound so batch callers can classify it.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image, pageNumber int) (*model.LayoutStructure, error) {
	if p.recognizer == nil {
		return nil, ErrNoRecognizer
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("page %d: %w", pageNumber, batch.ErrUnreadableImage)
	}

	working := img
	if p.options.enhance {
		working, _ = quality.NewEnhancerWithConfig(p.options.enhanceConfig).Enhance(img)
	}

	blocks, err := p.recognizer.Recognize(ctx, working)
	if err != nil {
		return nil, fmt.Errorf("recognizing page %d: %w", pageNumber, err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("page %d: %w", pageNumber, batch.ErrNoTextFound)
	}

	return layout.NewAnalyzerWithConfig(p.options.analyzerConfig).Analyze(blocks, pageNumber), nil
}

// AnalyzeBatch runs the pipeline over every image with bounded concurrency
// and returns the finished batch job. Page numbers are assigned from each
// image's position in the batch, starting at 1. onProgress may be nil.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, images []image.Image, onProgress batch.ProgressHandler) (*batch.Job, error) {
	scheduler := batch.NewSchedulerWithConfig(p.options.schedulerConfig)
	return scheduler.ProcessBatch(ctx, images, func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		return p.Analyze(ctx, img, index+1)
	}, onProgress)
}

// Metrics scores an image's quality without modifying it.
func (p *Pipeline) Metrics(img image.Image) quality.Metrics {
	return quality.ComputeWithConfig(img, p.options.enhanceConfig.Metrics)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	structure := lyra.Must(lyra.New(recognizer).Analyze(ctx, img, 1))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
