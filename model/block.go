package model

import "sort"

// TextBlock is a piece of recognized text with its position on the page.
// Blocks are produced by an external recognizer and are treated as
// read-only input by the analysis pipeline.
type TextBlock struct {
	// Text is the recognized text content.
	Text string

	// BBox is the block's bounding box in page-normalized coordinates.
	BBox BBox

	// Confidence is the recognizer's confidence for this block, 0 to 1.
	Confidence float64
}

// SortBlocksByTop returns a copy of blocks ordered by vertical position
// (top edge ascending, ties broken by left edge). The input slice is not
// modified, so analysis functions stay pure with respect to their input.
func SortBlocksByTop(blocks []TextBlock) []TextBlock {
	sorted := make([]TextBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.MinY != sorted[j].BBox.MinY {
			return sorted[i].BBox.MinY < sorted[j].BBox.MinY
		}
		return sorted[i].BBox.MinX < sorted[j].BBox.MinX
	})
	return sorted
}
