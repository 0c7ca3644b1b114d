package layout

import (
	"strings"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// sectionKeywords maps header keywords to section types. Order matters:
// "pre-chorus" and "prechorus" must be tried before "chorus" so that a
// pre-chorus header is not swallowed by the shorter keyword.
var sectionKeywords = []struct {
	keyword string
	typ     model.SectionType
}{
	{"pre-chorus", model.SectionPreChorus},
	{"prechorus", model.SectionPreChorus},
	{"chorus", model.SectionChorus},
	{"verse", model.SectionVerse},
	{"bridge", model.SectionBridge},
	{"intro", model.SectionIntro},
	{"outro", model.SectionOutro},
	{"interlude", model.SectionInterlude},
	{"solo", model.SectionSolo},
	{"instrumental", model.SectionInstrumental},
	{"refrain", model.SectionRefrain},
}

// SectionExtractor segments a page's blocks into named chart sections.
type SectionExtractor struct{}

// NewSectionExtractor creates a section extractor.
func NewSectionExtractor() *SectionExtractor {
	return &SectionExtractor{}
}

// Extract walks the blocks in vertical order. A block whose lowercased
// text contains a section keyword opens a new section and closes the one
// before it; every other block contributes a content line to the current
// section. Pages with content but no headers yield a single Unknown
// section holding everything.
func (e *SectionExtractor) Extract(blocks []model.TextBlock, pageNumber int) []model.Section {
	sorted := model.SortBlocksByTop(blocks)

	var sections []model.Section
	var current *sectionAccumulator

	for _, block := range sorted {
		if typ, ok := headerType(block.Text); ok {
			if current != nil {
				sections = append(sections, current.close(pageNumber))
			}
			current = &sectionAccumulator{typ: typ, bbox: block.BBox}
			continue
		}

		if current == nil {
			current = &sectionAccumulator{typ: model.SectionUnknown, bbox: block.BBox, implicit: true}
		}
		current.addLine(block)
	}

	if current != nil && (!current.implicit || len(current.lines) > 0) {
		sections = append(sections, current.close(pageNumber))
	}
	return sections
}

// headerType reports the section type named by a header block, if any.
func headerType(text string) (model.SectionType, bool) {
	lowered := strings.ToLower(text)
	for _, entry := range sectionKeywords {
		if strings.Contains(lowered, entry.keyword) {
			return entry.typ, true
		}
	}
	return model.SectionUnknown, false
}

// sectionAccumulator collects the lines of one in-progress section.
type sectionAccumulator struct {
	typ      model.SectionType
	lines    []string
	bbox     model.BBox
	implicit bool // opened by content rather than a header
}

func (a *sectionAccumulator) addLine(block model.TextBlock) {
	a.lines = append(a.lines, strings.TrimSpace(block.Text))
	if len(a.lines) == 1 && a.implicit {
		a.bbox = block.BBox
	} else {
		a.bbox = a.bbox.Union(block.BBox)
	}
}

func (a *sectionAccumulator) close(pageNumber int) model.Section {
	return model.Section{
		Type:       a.typ,
		Content:    strings.Join(a.lines, "\n"),
		BBox:       a.bbox,
		PageNumber: pageNumber,
	}
}
