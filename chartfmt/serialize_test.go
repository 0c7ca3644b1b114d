package chartfmt

import (
	"strings"
	"testing"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

func makeStructure(sections ...model.Section) *model.LayoutStructure {
	return &model.LayoutStructure{
		LayoutType: model.LayoutInline,
		Sections:   sections,
	}
}

func TestSerialize_TwoSections(t *testing.T) {
	structure := makeStructure(
		model.Section{Type: model.SectionVerse, Content: "[C]walking [G]down"},
		model.Section{Type: model.SectionChorus, Content: "sing it loud\nsing it proud"},
	)

	got := Serialize(structure)
	want := "{title: Untitled}\n" +
		"\n{comment: Verse}\n[C]walking [G]down\n" +
		"\n{comment: Chorus}\nsing it loud\nsing it proud\n"

	if got != want {
		t.Errorf("Expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestSerialize_UnknownSectionIsBare(t *testing.T) {
	structure := makeStructure(
		model.Section{Type: model.SectionUnknown, Content: "stray line"},
	)

	got := Serialize(structure)

	if strings.Contains(got, "{comment:") {
		t.Errorf("Unknown section must not emit a directive: %q", got)
	}
	if !strings.Contains(got, "stray line\n") {
		t.Errorf("Expected bare content, got %q", got)
	}
}

func TestSerialize_TitleDirectiveFirst(t *testing.T) {
	got := SerializeWithConfig(makeStructure(), Config{Title: "Amazing Grace"})

	if !strings.HasPrefix(got, "{title: Amazing Grace}\n") {
		t.Errorf("Expected title directive first, got %q", got)
	}
}

func TestSerialize_EmptyTitleFallsBack(t *testing.T) {
	got := SerializeWithConfig(makeStructure(), Config{})

	if !strings.HasPrefix(got, "{title: Untitled}\n") {
		t.Errorf("Expected fallback title, got %q", got)
	}
}

func TestSerialize_NilStructure(t *testing.T) {
	got := Serialize(nil)

	if got != "{title: Untitled}\n" {
		t.Errorf("Expected just the title directive, got %q", got)
	}
}

func TestSerialize_HyphenatedSectionCasing(t *testing.T) {
	structure := makeStructure(
		model.Section{Type: model.SectionPreChorus, Content: "building up"},
	)

	got := Serialize(structure)

	if !strings.Contains(got, "{comment: Pre-Chorus}\n") {
		t.Errorf("Expected title-cased hyphenated label, got %q", got)
	}
}

func TestSerialize_EmptySectionContent(t *testing.T) {
	structure := makeStructure(
		model.Section{Type: model.SectionInstrumental},
	)

	got := Serialize(structure)
	want := "{title: Untitled}\n\n{comment: Instrumental}\n"

	if got != want {
		t.Errorf("Expected:\n%q\ngot:\n%q", want, got)
	}
}
