package layout

import "github.com/ColbyCorcoran/Lyra-sub006/model"

// AnalyzerConfig holds configuration for the full layout analysis pipeline.
type AnalyzerConfig struct {
	// Detector configures layout-type classification.
	Detector DetectorConfig

	// Chords configures chord extraction and lyric alignment.
	Chords ChordMapperConfig
}

// DefaultAnalyzerConfig returns a configuration with sensible defaults for
// all sub-algorithms.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Detector: DefaultDetectorConfig(),
		Chords:   DefaultChordMapperConfig(),
	}
}

// Analyzer runs the complete layout analysis for one page: layout
// classification, section extraction, chord placement, and spacing
// preservation.
type Analyzer struct {
	detector *Detector
	sections *SectionExtractor
	chords   *ChordMapper
}

// NewAnalyzer creates an analyzer with default configuration.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultAnalyzerConfig())
}

// NewAnalyzerWithConfig creates an analyzer with custom configuration.
func NewAnalyzerWithConfig(config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		detector: NewDetectorWithConfig(config.Detector),
		sections: NewSectionExtractor(),
		chords:   NewChordMapperWithConfig(config.Chords),
	}
}

// Analyze classifies the page layout, extracts sections, maps chords to
// lyrics, and records spacing. The input blocks are never modified, and
// identical input always yields identical output.
func (a *Analyzer) Analyze(blocks []model.TextBlock, pageNumber int) *model.LayoutStructure {
	layoutType := a.detector.Detect(blocks)

	return &model.LayoutStructure{
		LayoutType:       layoutType,
		Sections:         a.sections.Extract(blocks, pageNumber),
		ChordPlacements:  a.chords.Map(blocks, layoutType),
		PreservedSpacing: PreserveStructure(blocks),
	}
}
