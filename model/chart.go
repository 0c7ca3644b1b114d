package model

// LayoutType classifies how chords and lyrics are arranged on a page.
type LayoutType int

const (
	// LayoutUnknown means no recognizable chart layout was found.
	LayoutUnknown LayoutType = iota

	// LayoutInline is bracketed inline chord notation, e.g. "[C]word".
	LayoutInline

	// LayoutNashville is the Nashville number system (scale degrees).
	LayoutNashville

	// LayoutTablature is fretted-instrument tablature (string/pipe/dash).
	LayoutTablature

	// LayoutChordOverLyric places chord lines directly above lyric lines.
	LayoutChordOverLyric
)

// String returns a string representation of the layout type.
func (t LayoutType) String() string {
	switch t {
	case LayoutInline:
		return "inline"
	case LayoutNashville:
		return "nashville"
	case LayoutTablature:
		return "tablature"
	case LayoutChordOverLyric:
		return "chord-over-lyric"
	default:
		return "unknown"
	}
}

// SectionType identifies the musical role of a chart section.
type SectionType int

const (
	SectionUnknown SectionType = iota
	SectionVerse
	SectionChorus
	SectionBridge
	SectionIntro
	SectionOutro
	SectionPreChorus
	SectionInterlude
	SectionSolo
	SectionInstrumental
	SectionRefrain
)

// String returns the lowercase name of the section type.
func (t SectionType) String() string {
	switch t {
	case SectionVerse:
		return "verse"
	case SectionChorus:
		return "chorus"
	case SectionBridge:
		return "bridge"
	case SectionIntro:
		return "intro"
	case SectionOutro:
		return "outro"
	case SectionPreChorus:
		return "pre-chorus"
	case SectionInterlude:
		return "interlude"
	case SectionSolo:
		return "solo"
	case SectionInstrumental:
		return "instrumental"
	case SectionRefrain:
		return "refrain"
	default:
		return "unknown"
	}
}

// Section is one segment of a chart (a verse, chorus, and so on) with the
// lines that belong to it.
type Section struct {
	// Type is the section's musical role.
	Type SectionType

	// Content holds the section's lines joined by newlines.
	Content string

	// BBox is the union of the bounding boxes of the section's lines.
	BBox BBox

	// PageNumber is the page this section was found on.
	PageNumber int
}

// ChordPlacement records a single chord symbol and where it sits relative
// to the lyrics.
type ChordPlacement struct {
	// Chord is the chord symbol text, e.g. "C" or "Am7".
	Chord string

	// Position is the chord's location on the page.
	Position Point

	// AlignedWithLyric is the lyric text the chord sits over, or empty if
	// no lyric line could be associated with it.
	AlignedWithLyric string

	// Confidence is inherited from the recognized block the chord came from.
	Confidence float64
}

// SpacingRule preserves the visual spacing of one line so a chart can be
// re-rendered without collapsing its original layout.
type SpacingRule struct {
	// LineNumber is the 0-based line index in vertical order.
	LineNumber int

	// Indentation is the left edge of the line.
	Indentation float64

	// TopSpacing is the vertical gap from the previous line's bottom edge.
	// It is 0 for the first line.
	TopSpacing float64
}

// LayoutStructure is the complete result of layout analysis for one page.
// Sections and PreservedSpacing are both ordered consistently with the
// original vertical reading order of the page.
type LayoutStructure struct {
	LayoutType       LayoutType
	Sections         []Section
	ChordPlacements  []ChordPlacement
	PreservedSpacing []SpacingRule
}
