package layout

import "github.com/ColbyCorcoran/Lyra-sub006/model"

// PreserveStructure records the indentation and vertical spacing of every
// block in vertical order, so a re-rendered chart can keep the visual
// rhythm of the original page. The first line has a top spacing of 0;
// overlapping blocks clamp to 0 rather than reporting a negative gap.
func PreserveStructure(blocks []model.TextBlock) []model.SpacingRule {
	sorted := model.SortBlocksByTop(blocks)

	rules := make([]model.SpacingRule, 0, len(sorted))
	for i, block := range sorted {
		topSpacing := 0.0
		if i > 0 {
			if gap := block.BBox.MinY - sorted[i-1].BBox.MaxY; gap > 0 {
				topSpacing = gap
			}
		}
		rules = append(rules, model.SpacingRule{
			LineNumber:  i,
			Indentation: block.BBox.MinX,
			TopSpacing:  topSpacing,
		})
	}
	return rules
}
