// Package quality scores the suitability of a photographed or scanned page
// for text recognition, and conditionally corrects images that score poorly.
//
// Scoring samples the image on a fixed stride rather than visiting every
// pixel, so it stays cheap even for full-resolution camera output.
package quality

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MetricsConfig holds configuration for quality scoring.
type MetricsConfig struct {
	// SampleStride is the pixel step used when sampling the image in both
	// axes (default: 10). Scoring never visits every pixel.
	SampleStride int
}

// DefaultMetricsConfig returns sensible default configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SampleStride: 10,
	}
}

// Metrics describes the recognition-readiness of an image. A Metrics value
// is created fresh by Compute and never mutated in place; OverallScore is
// always derived from the other five fields.
type Metrics struct {
	// Brightness is the mean perceptual luma, 0 to 1.
	Brightness float64

	// Contrast is the standard deviation of sampled luma values, 0 to 1.
	Contrast float64

	// Sharpness is the mean absolute 4-neighbor Laplacian response over the
	// sampled grid, on a 0-255 luma scale. Unbounded above.
	Sharpness float64

	// SkewAngle is the page rotation in signed degrees. Geometric line-angle
	// detection is not implemented; this is always reported as 0.
	SkewAngle float64

	// NoiseLevel is the mean absolute luma difference between adjacent
	// sampled pixels, scaled to 0-100.
	NoiseLevel float64

	// OverallScore is a fixed weighted sum of the other metrics, 0 to 1.
	OverallScore float64
}

// Weights of the overall score terms.
const (
	brightnessWeight = 0.20
	contrastWeight   = 0.30
	sharpnessWeight  = 0.30
	skewWeight       = 0.10
	noiseWeight      = 0.10
)

// Compute scores an image with default configuration.
func Compute(img image.Image) Metrics {
	return ComputeWithConfig(img, DefaultMetricsConfig())
}

// ComputeWithConfig scores an image, sampling pixels on the configured
// stride. A nil or empty image yields zero metrics.
func ComputeWithConfig(img image.Image, config MetricsConfig) Metrics {
	if img == nil {
		return Metrics{}
	}
	stride := config.SampleStride
	if stride < 1 {
		stride = 1
	}

	grid := sampleLumaGrid(img, stride)
	if len(grid) == 0 || len(grid[0]) == 0 {
		return Metrics{}
	}

	m := Metrics{
		Brightness: meanLuma(grid),
		Contrast:   lumaStdDev(grid),
		Sharpness:  laplacianResponse(grid),
		SkewAngle:  0, // line-angle detection not implemented
		NoiseLevel: adjacentNoise(grid),
	}
	m.OverallScore = overallScore(m)
	return m
}

// overallScore combines the five metrics into a single 0-1 score.
func overallScore(m Metrics) float64 {
	brightnessTerm := 1 - math.Min(1, math.Abs(m.Brightness-0.5)*2)
	contrastTerm := math.Min(m.Contrast/0.5, 1)
	sharpnessTerm := math.Min(m.Sharpness/100, 1)
	skewTerm := math.Max(0, 1-math.Abs(m.SkewAngle)/45)
	noiseTerm := math.Max(0, 1-m.NoiseLevel/50)

	return brightnessWeight*brightnessTerm +
		contrastWeight*contrastTerm +
		sharpnessWeight*sharpnessTerm +
		skewWeight*skewTerm +
		noiseWeight*noiseTerm
}

// sampleLumaGrid collects perceptual luma values (0 to 1) at every
// stride-th pixel in both axes.
func sampleLumaGrid(img image.Image, stride int) [][]float64 {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}

	var grid [][]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		var row []float64
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			row = append(row, lumaAt(img, x, y))
		}
		grid = append(grid, row)
	}
	return grid
}

// lumaAt returns the perceptual luma (0.299R + 0.587G + 0.114B) of a pixel,
// normalized to 0-1.
func lumaAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
}

func flatten(grid [][]float64) []float64 {
	flat := make([]float64, 0, len(grid)*len(grid[0]))
	for _, row := range grid {
		flat = append(flat, row...)
	}
	return flat
}

func meanLuma(grid [][]float64) float64 {
	return stat.Mean(flatten(grid), nil)
}

func lumaStdDev(grid [][]float64) float64 {
	flat := flatten(grid)
	if len(flat) < 2 {
		return 0
	}
	return stat.StdDev(flat, nil)
}

// laplacianResponse is the mean |4*center - (top+bottom+left+right)| over
// interior samples, reported on a 0-255 luma scale.
func laplacianResponse(grid [][]float64) float64 {
	rows := len(grid)
	if rows < 3 {
		return 0
	}
	cols := len(grid[0])
	if cols < 3 {
		return 0
	}

	var sum float64
	var count int
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			response := 4*grid[y][x] - grid[y-1][x] - grid[y+1][x] - grid[y][x-1] - grid[y][x+1]
			sum += math.Abs(response)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 255
}

// adjacentNoise is the mean absolute luma difference between horizontally
// and vertically adjacent samples, scaled to 0-100.
func adjacentNoise(grid [][]float64) float64 {
	var sum float64
	var count int

	for y := range grid {
		for x := 1; x < len(grid[y]); x++ {
			sum += math.Abs(grid[y][x] - grid[y][x-1])
			count++
		}
	}
	for y := 1; y < len(grid); y++ {
		cols := len(grid[y])
		if c := len(grid[y-1]); c < cols {
			cols = c
		}
		for x := 0; x < cols; x++ {
			sum += math.Abs(grid[y][x] - grid[y-1][x])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}
