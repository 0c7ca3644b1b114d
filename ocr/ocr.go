//go:build ocr

// Package ocr recognizes text in chart images via the Tesseract OCR engine,
// wrapped by gosseract. It requires Tesseract to be installed on the system.
// On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Recognized lines come back as positioned text blocks in page-normalized
// coordinates, ready for layout analysis.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// Client wraps Tesseract for chart text recognition.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("configuring page segmentation: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage sets the language(s) for recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// Recognize runs OCR on the image and returns one text block per recognized
// line, with bounding boxes scaled into page-normalized coordinates and
// confidences scaled to 0..1. Lines containing only whitespace are dropped.
func (c *Client) Recognize(ctx context.Context, img image.Image) ([]model.TextBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	if err := c.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	blocks := make([]model.TextBlock, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimRight(box.Word, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, model.TextBlock{
			Text: text,
			BBox: model.NewBBox(
				float64(box.Box.Min.X-bounds.Min.X)/w,
				float64(box.Box.Min.Y-bounds.Min.Y)/h,
				float64(box.Box.Max.X-bounds.Min.X)/w,
				float64(box.Box.Max.Y-bounds.Min.Y)/h,
			),
			Confidence: box.Confidence / 100.0,
		})
	}
	return blocks, nil
}
