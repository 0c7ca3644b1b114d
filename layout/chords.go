package layout

import (
	"regexp"
	"strings"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// ChordMapperConfig holds the thresholds used for chord placement.
type ChordMapperConfig struct {
	// ChordTokenRatio is the fraction of a block's tokens that must look
	// chord-like for the block to count as a chord line (default: 0.6,
	// strictly exceeded).
	ChordTokenRatio float64

	// AlignTolerance is the maximum vertical gap, as a fraction of page
	// height, between a chord line and the lyric line it annotates
	// (default: 0.05).
	AlignTolerance float64

	// MaxChordLength is the longest trimmed token still considered a chord
	// symbol (default: 6).
	MaxChordLength int
}

// DefaultChordMapperConfig returns sensible default configuration.
func DefaultChordMapperConfig() ChordMapperConfig {
	return ChordMapperConfig{
		ChordTokenRatio: 0.6,
		AlignTolerance:  0.05,
		MaxChordLength:  6,
	}
}

// ChordMapper extracts chord symbols and ties them to lyric lines.
type ChordMapper struct {
	config ChordMapperConfig
}

// NewChordMapper creates a chord mapper with default configuration.
func NewChordMapper() *ChordMapper {
	return NewChordMapperWithConfig(DefaultChordMapperConfig())
}

// NewChordMapperWithConfig creates a chord mapper with custom configuration.
func NewChordMapperWithConfig(config ChordMapperConfig) *ChordMapper {
	return &ChordMapper{config: config}
}

// bracketed substrings like "[Am7]" in inline notation.
var inlineChordPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Map extracts chord placements from a page. Chord-over-lyric pages pair
// whole chord lines with the lyric line directly beneath them; every other
// layout is mined for bracketed inline chords.
func (m *ChordMapper) Map(blocks []model.TextBlock, layoutType model.LayoutType) []model.ChordPlacement {
	if layoutType == model.LayoutChordOverLyric {
		return m.mapChordLines(blocks)
	}
	return m.mapInline(blocks)
}

// mapChordLines pairs each chord line with the nearest lyric line below it.
func (m *ChordMapper) mapChordLines(blocks []model.TextBlock) []model.ChordPlacement {
	sorted := model.SortBlocksByTop(blocks)

	isChordLine := make([]bool, len(sorted))
	for i, b := range sorted {
		isChordLine[i] = m.looksLikeChordLine(b.Text)
	}

	var placements []model.ChordPlacement
	for i, block := range sorted {
		if !isChordLine[i] {
			continue
		}

		lyric := ""
		for j := i + 1; j < len(sorted); j++ {
			if isChordLine[j] {
				continue
			}
			gap := sorted[j].BBox.MinY - block.BBox.MaxY
			if gap < m.config.AlignTolerance {
				lyric = sorted[j].Text
			}
			break
		}

		placements = append(placements, m.placeTokens(block, lyric)...)
	}
	return placements
}

// placeTokens spreads a chord line's tokens across the line's width,
// positioning each token at its relative index.
func (m *ChordMapper) placeTokens(block model.TextBlock, lyric string) []model.ChordPlacement {
	tokens := strings.Fields(block.Text)
	if len(tokens) == 0 {
		return nil
	}

	var placements []model.ChordPlacement
	width := block.BBox.Width()
	for i, token := range tokens {
		if !isChordSymbol(token, m.config.MaxChordLength) {
			continue
		}
		relative := float64(i) / float64(len(tokens))
		placements = append(placements, model.ChordPlacement{
			Chord: token,
			Position: model.Point{
				X: block.BBox.MinX + relative*width,
				Y: block.BBox.MinY,
			},
			AlignedWithLyric: lyric,
			Confidence:       block.Confidence,
		})
	}
	return placements
}

// mapInline extracts bracket-delimited chords embedded in lyric text.
func (m *ChordMapper) mapInline(blocks []model.TextBlock) []model.ChordPlacement {
	var placements []model.ChordPlacement
	for _, block := range blocks {
		for _, match := range inlineChordPattern.FindAllStringSubmatch(block.Text, -1) {
			inner := match[1]
			if !isChordSymbol(inner, m.config.MaxChordLength) {
				continue
			}
			placements = append(placements, model.ChordPlacement{
				Chord:            inner,
				Position:         block.BBox.Origin(),
				AlignedWithLyric: block.Text,
				Confidence:       block.Confidence,
			})
		}
	}
	return placements
}

// looksLikeChordLine reports whether most of a line's tokens are chords.
func (m *ChordMapper) looksLikeChordLine(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return false
	}
	chordTokens := 0
	for _, token := range tokens {
		if isChordSymbol(token, m.config.MaxChordLength) {
			chordTokens++
		}
	}
	return float64(chordTokens) > m.config.ChordTokenRatio*float64(len(tokens))
}
