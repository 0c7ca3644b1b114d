package quality

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Orientation describes the EXIF-style orientation of a captured image,
// i.e. the transform needed to bring it upright.
type Orientation int

const (
	OrientationUpright    Orientation = 1
	OrientationFlipH      Orientation = 2
	OrientationRotate180  Orientation = 3
	OrientationFlipV      Orientation = 4
	OrientationTranspose  Orientation = 5
	OrientationRotate90   Orientation = 6 // needs 90° clockwise correction
	OrientationTransverse Orientation = 7
	OrientationRotate270  Orientation = 8 // needs 90° counterclockwise correction
)

// EnhanceConfig holds the thresholds that gate each enhancement step and
// the strengths of the corrections applied.
type EnhanceConfig struct {
	// Metrics configures the quality scoring used before and after.
	Metrics MetricsConfig

	// DeskewThreshold is the minimum |skew angle| in degrees before the
	// image is rotated straight (default: 2.0).
	DeskewThreshold float64

	// ContrastThreshold triggers tone-curve contrast enhancement when the
	// measured contrast falls below it (default: 0.5).
	ContrastThreshold float64

	// NoiseThreshold triggers noise reduction when the measured noise level
	// exceeds it (default: 20.0).
	NoiseThreshold float64

	// SharpnessThreshold triggers luminance sharpening when the measured
	// sharpness falls below it (default: 50.0).
	SharpnessThreshold float64

	// UnsharpAmount is the strength of unsharp masking in the noise
	// reduction pass, and the minimum gain for luminance sharpening
	// (default: 0.5).
	UnsharpAmount float64
}

// enhanceHeadroom makes each correction aim past its gating threshold
// rather than exactly at it, so the corrected metric clears the gate when
// the image is scored again.
const enhanceHeadroom = 1.2

// DefaultEnhanceConfig returns sensible default configuration.
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{
		Metrics:            DefaultMetricsConfig(),
		DeskewThreshold:    2.0,
		ContrastThreshold:  0.5,
		NoiseThreshold:     20.0,
		SharpnessThreshold: 50.0,
		UnsharpAmount:      0.5,
	}
}

// Enhancer conditionally corrects an image so it scores better for text
// recognition. Each correction is applied only when the corresponding
// metric crosses its threshold, in a fixed order: orientation, deskew,
// contrast, noise reduction, sharpening. A step that cannot run leaves
// the image unchanged rather than failing.
type Enhancer struct {
	config EnhanceConfig
}

// NewEnhancer creates an enhancer with default configuration.
func NewEnhancer() *Enhancer {
	return NewEnhancerWithConfig(DefaultEnhanceConfig())
}

// NewEnhancerWithConfig creates an enhancer with custom configuration.
func NewEnhancerWithConfig(config EnhanceConfig) *Enhancer {
	return &Enhancer{config: config}
}

// Enhance corrects an image that is already known to be upright.
func (e *Enhancer) Enhance(img image.Image) (image.Image, Metrics) {
	return e.EnhanceOriented(img, OrientationUpright)
}

// EnhanceOriented corrects an image given its capture orientation. The
// source image is never mutated; the returned image is a new buffer (or
// the source itself when no step applied). Final metrics are recomputed
// from the resulting image.
func (e *Enhancer) EnhanceOriented(img image.Image, orientation Orientation) (image.Image, Metrics) {
	if img == nil || img.Bounds().Empty() {
		return img, Metrics{}
	}

	initial := ComputeWithConfig(img, e.config.Metrics)

	var result image.Image = img

	if orientation != OrientationUpright {
		result = applyOrientation(result, orientation)
	}

	if math.Abs(initial.SkewAngle) > e.config.DeskewThreshold {
		result = rotateDegrees(result, -initial.SkewAngle)
	}

	if initial.Contrast < e.config.ContrastThreshold {
		target := e.config.ContrastThreshold * enhanceHeadroom
		result = applyToneCurve(result, initial.Brightness, initial.Contrast, target)
	}

	if initial.NoiseLevel > e.config.NoiseThreshold {
		result = reduceNoise(result, e.config.UnsharpAmount)
	}

	if initial.Sharpness < e.config.SharpnessThreshold {
		measured := ComputeWithConfig(result, e.config.Metrics).Sharpness
		result = sharpenLuminance(result, sharpenAmount(measured, e.config.SharpnessThreshold, e.config.UnsharpAmount))
	}

	final := ComputeWithConfig(result, e.config.Metrics)
	return result, final
}

// cloneRGBA copies an image into a fresh RGBA buffer anchored at (0,0).
func cloneRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)
	return dst
}

// applyOrientation brings an EXIF-oriented image upright via exact pixel
// remapping. Unrecognized orientation values leave the image unchanged.
func applyOrientation(img image.Image, orientation Orientation) image.Image {
	src := cloneRGBA(img)
	w := src.Rect.Dx()
	h := src.Rect.Dy()

	var dst *image.RGBA
	var remap func(x, y int) (int, int)

	switch orientation {
	case OrientationFlipH:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		remap = func(x, y int) (int, int) { return w - 1 - x, y }
	case OrientationRotate180:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		remap = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case OrientationFlipV:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		remap = func(x, y int) (int, int) { return x, h - 1 - y }
	case OrientationTranspose:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		remap = func(x, y int) (int, int) { return y, x }
	case OrientationRotate90:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		remap = func(x, y int) (int, int) { return h - 1 - y, x }
	case OrientationTransverse:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		remap = func(x, y int) (int, int) { return h - 1 - y, w - 1 - x }
	case OrientationRotate270:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		remap = func(x, y int) (int, int) { return y, w - 1 - x }
	default:
		return img
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := remap(x, y)
			dst.SetRGBA(dx, dy, src.RGBAAt(x, y))
		}
	}
	return dst
}

// rotateDegrees rotates an image about its center by the given angle,
// resampling bilinearly. The canvas keeps its size; uncovered corners
// fill white, matching paper background.
func rotateDegrees(img image.Image, degrees float64) image.Image {
	src := cloneRGBA(img)
	w := float64(src.Rect.Dx())
	h := float64(src.Rect.Dy())
	if w == 0 || h == 0 {
		return img
	}

	dst := image.NewRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)

	radians := degrees * math.Pi / 180
	sin, cos := math.Sin(radians), math.Cos(radians)
	cx, cy := w/2, h/2

	// Rotation about the image center: translate, rotate, translate back.
	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, m, src, src.Rect, draw.Over, nil)
	return dst
}

// applyToneCurve pushes pixel values through a saturating tone curve
// centered on the measured mean luma, stretching deviations so the output's
// contrast lands at or above target while extremes pin to black and white.
// Pinned values stay pinned, so the curve is stable under re-application.
func applyToneCurve(img image.Image, mean, contrast, target float64) image.Image {
	if contrast <= 0 || target <= contrast {
		return img
	}
	gain := target / contrast

	var lut [256]uint8
	for i := range lut {
		v := mean + (float64(i)/255-mean)*gain
		lut[i] = uint8(clamp(v, 0, 1)*255 + 0.5)
	}

	dst := cloneRGBA(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = lut[dst.Pix[i]]
		dst.Pix[i+1] = lut[dst.Pix[i+1]]
		dst.Pix[i+2] = lut[dst.Pix[i+2]]
	}
	return dst
}

// sharpenAmount sizes the unsharp gain from the measured sharpness deficit.
// The blur plane soaks up part of the added response, so the deficit is
// provisioned twice over, bounded to keep halos in check.
func sharpenAmount(measured, threshold, base float64) float64 {
	const maxAmount = 16.0
	target := threshold * enhanceHeadroom
	if measured <= 0 {
		return maxAmount
	}
	return clamp((target/measured-1)*2, base, maxAmount)
}

// reduceNoise applies a slight box blur to suppress sensor noise, then an
// unsharp-mask pass to recover edge definition lost to the blur.
func reduceNoise(img image.Image, amount float64) image.Image {
	blurred := boxBlur3(cloneRGBA(img))
	return unsharpMask(blurred, amount)
}

// unsharpMask sharpens an image by adding back the difference between it
// and a blurred copy of itself.
func unsharpMask(src *image.RGBA, amount float64) *image.RGBA {
	blurred := boxBlur3(src)
	dst := image.NewRGBA(src.Rect)
	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			base := float64(src.Pix[i+c])
			soft := float64(blurred.Pix[i+c])
			dst.Pix[i+c] = uint8(clamp(base+amount*(base-soft), 0, 255))
		}
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// sharpenLuminance applies unsharp masking to the luma channel only,
// scaling RGB proportionally so hue is preserved.
func sharpenLuminance(img image.Image, amount float64) image.Image {
	src := cloneRGBA(img)
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return img
	}

	luma := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.RGBAAt(x, y)
			luma[y*w+x] = 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
		}
	}
	blurred := boxBlurPlane(luma, w, h)

	dst := image.NewRGBA(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.RGBAAt(x, y)
			l := luma[y*w+x]
			if l <= 0 {
				dst.SetRGBA(x, y, p)
				continue
			}
			sharpened := clamp(l+amount*(l-blurred[y*w+x]), 0, 255)
			scale := sharpened / l
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(clamp(float64(p.R)*scale, 0, 255)),
				G: uint8(clamp(float64(p.G)*scale, 0, 255)),
				B: uint8(clamp(float64(p.B)*scale, 0, 255)),
				A: p.A,
			})
		}
	}
	return dst
}

// boxBlur3 applies a 3x3 box blur with clamped edges.
func boxBlur3(src *image.RGBA) *image.RGBA {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	dst := image.NewRGBA(src.Rect)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			var n float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					p := src.RGBAAt(nx, ny)
					r += float64(p.R)
					g += float64(p.G)
					b += float64(p.B)
					a += float64(p.A)
					n++
				}
			}
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(r / n),
				G: uint8(g / n),
				B: uint8(b / n),
				A: uint8(a / n),
			})
		}
	}
	return dst
}

// boxBlurPlane applies a 3x3 box blur to a single float channel.
func boxBlurPlane(plane []float64, w, h int) []float64 {
	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, n float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					sum += plane[ny*w+nx]
					n++
				}
			}
			out[y*w+x] = sum / n
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
