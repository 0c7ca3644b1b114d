// Package chartfmt serializes analyzed chart structures into a line-oriented
// chart document: brace-delimited directives for metadata and section labels,
// section content passed through verbatim (including any bracketed inline
// chords it carries).
package chartfmt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// Config holds serialization settings.
type Config struct {
	// Title is written as the document's title directive. Empty titles fall
	// back to "Untitled".
	Title string
}

// DefaultConfig returns sensible default serialization settings.
func DefaultConfig() Config {
	return Config{Title: "Untitled"}
}

// Serialize renders a chart structure with default settings.
func Serialize(structure *model.LayoutStructure) string {
	return SerializeWithConfig(structure, DefaultConfig())
}

// SerializeWithConfig renders a chart structure as a chart document. The
// title directive comes first, then each section separated by a blank line.
// Sections of a known type open with a comment directive naming the section;
// unknown sections contribute their content bare. Section content is written
// as-is, one source line per output line.
func SerializeWithConfig(structure *model.LayoutStructure, config Config) string {
	title := config.Title
	if title == "" {
		title = "Untitled"
	}

	var b strings.Builder
	b.WriteString("{title: ")
	b.WriteString(title)
	b.WriteString("}\n")

	if structure == nil {
		return b.String()
	}

	caser := cases.Title(language.English)
	for _, section := range structure.Sections {
		b.WriteString("\n")
		if section.Type != model.SectionUnknown {
			b.WriteString("{comment: ")
			b.WriteString(caser.String(section.Type.String()))
			b.WriteString("}\n")
		}
		if section.Content != "" {
			b.WriteString(section.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}
