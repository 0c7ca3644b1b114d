// Package model provides the intermediate representation (IR) for scanned
// chord charts.
//
// This package defines the data structures shared by the whole pipeline:
// the positioned text blocks produced by a recognizer, the geometric
// primitives used to reason about them, and the structured chart layout
// produced by analysis.
//
// # Coordinates
//
// All positions are page-normalized: x and y run from 0 to 1, the origin is
// the top-left corner of the page, and y increases downward. This matches
// the orientation of a photographed or scanned page, so "sorted by vertical
// position" means ascending MinY.
//
// # Input
//
// [TextBlock] is the read-only input boundary: a piece of recognized text,
// its bounding box, and the recognizer's confidence. The recognition step
// itself lives outside this module.
//
// # Output
//
// [LayoutStructure] aggregates everything layout analysis produces for one
// page: the detected [LayoutType], the ordered [Section] list, chord
// placements, and spacing rules. Sections and spacing rules are both ordered
// by the original vertical reading order of the page.
package model
