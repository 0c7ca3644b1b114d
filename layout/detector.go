package layout

import (
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// DetectorConfig holds the thresholds used for layout classification.
type DetectorConfig struct {
	// NashvilleDigitRatio is the fraction of purely-numeric blocks above
	// which a page is classified as Nashville notation (default: 0.4).
	NashvilleDigitRatio float64

	// LargeGapFactor scales the mean vertical gap; a gap larger than
	// LargeGapFactor times the mean counts as "large" when looking for the
	// alternating chord/lyric line pattern (default: 0.7).
	LargeGapFactor float64

	// AlternationRatio is the fraction of consecutive gap pairs that must
	// straddle the large-gap threshold for the page to read as
	// chord-over-lyric (default: 0.5, strictly exceeded).
	AlternationRatio float64

	// MaxChordLength is the longest trimmed token still considered a chord
	// symbol (default: 6).
	MaxChordLength int
}

// DefaultDetectorConfig returns sensible default configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		NashvilleDigitRatio: 0.4,
		LargeGapFactor:      0.7,
		AlternationRatio:    0.5,
		MaxChordLength:      6,
	}
}

// Detector classifies which chart notation a page uses.
type Detector struct {
	config DetectorConfig
}

// NewDetector creates a detector with default configuration.
func NewDetector() *Detector {
	return NewDetectorWithConfig(DefaultDetectorConfig())
}

// NewDetectorWithConfig creates a detector with custom configuration.
func NewDetectorWithConfig(config DetectorConfig) *Detector {
	return &Detector{config: config}
}

// guitar string names that open a tablature line, e.g. "e|--3--".
var tabStringMarkers = []string{"e|", "a|", "d|", "g|", "b|"}

// Detect classifies the layout of a page. The checks are priority-ordered
// and the first match wins:
//
//  1. Inline if any block contains both '[' and ']'.
//  2. Nashville if enough blocks are purely decimal digits.
//  3. Tablature if any block opens with a string-name/pipe marker and
//     carries dashes or fret numbers.
//  4. ChordOverLyric if vertical gaps alternate small/large.
//  5. ChordOverLyric if any block looks chord-like; otherwise Unknown.
func (d *Detector) Detect(blocks []model.TextBlock) model.LayoutType {
	if len(blocks) == 0 {
		return model.LayoutUnknown
	}

	if d.hasInlineChords(blocks) {
		return model.LayoutInline
	}
	if d.isNashville(blocks) {
		return model.LayoutNashville
	}
	if d.isTablature(blocks) {
		return model.LayoutTablature
	}
	if d.hasAlternatingGaps(blocks) {
		return model.LayoutChordOverLyric
	}
	for _, b := range blocks {
		if isChordSymbol(b.Text, d.config.MaxChordLength) {
			return model.LayoutChordOverLyric
		}
	}
	return model.LayoutUnknown
}

func (d *Detector) hasInlineChords(blocks []model.TextBlock) bool {
	for _, b := range blocks {
		if strings.Contains(b.Text, "[") && strings.Contains(b.Text, "]") {
			return true
		}
	}
	return false
}

func (d *Detector) isNashville(blocks []model.TextBlock) bool {
	numeric := 0
	for _, b := range blocks {
		if isAllDigits(strings.TrimSpace(b.Text)) {
			numeric++
		}
	}
	return float64(numeric) > d.config.NashvilleDigitRatio*float64(len(blocks))
}

func (d *Detector) isTablature(blocks []model.TextBlock) bool {
	for _, b := range blocks {
		text := strings.ToLower(b.Text)
		for _, marker := range tabStringMarkers {
			if strings.Contains(text, marker) && strings.ContainsAny(text, "-0123456789") {
				return true
			}
		}
	}
	return false
}

// hasAlternatingGaps looks for the tight-then-loose vertical rhythm of a
// chord line sitting directly above its lyric line.
func (d *Detector) hasAlternatingGaps(blocks []model.TextBlock) bool {
	sorted := model.SortBlocksByTop(blocks)
	if len(sorted) < 3 {
		return false
	}

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].BBox.MinY-sorted[i-1].BBox.MinY)
	}

	mean := stat.Mean(gaps, nil)
	if mean <= 0 {
		return false
	}
	threshold := d.config.LargeGapFactor * mean

	alternating := 0
	pairs := len(gaps) - 1
	for i := 0; i < pairs; i++ {
		if (gaps[i] > threshold) != (gaps[i+1] > threshold) {
			alternating++
		}
	}
	return pairs > 0 && float64(alternating) > d.config.AlternationRatio*float64(pairs)
}

// isChordSymbol reports whether text reads as a chord symbol: trimmed,
// non-empty, opening with a note letter A-G, short, and without spaces.
func isChordSymbol(text string, maxLength int) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	first := trimmed[0]
	if first < 'A' || first > 'G' {
		return false
	}
	if utf8.RuneCountInString(trimmed) > maxLength {
		return false
	}
	return !strings.Contains(trimmed, " ")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
