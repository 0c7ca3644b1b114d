// Package layout turns a flat list of recognized text blocks into a
// structured chord chart. It classifies the chart's notation style,
// segments the page into named sections, aligns chord symbols with the
// lyric lines they belong to, and records the visual spacing of each line.
//
// The four sub-algorithms (Detector.Detect, SectionExtractor.Extract,
// ChordMapper.Map, and PreserveStructure) are each independently callable
// and are pure functions of their input: given identical blocks they
// produce identical output, with no hidden state.
//
// The Analyzer ties them together:
//
//	analyzer := layout.NewAnalyzer()
//	structure := analyzer.Analyze(blocks, pageNumber)
package layout
