// Package model provides the intermediate representation for processed
// documents.
//
// A [Document] is an ordered list of [Page] values plus the running
// [Totals] kept for the whole document. Each page holds its content in
// reading order as a sequence of [ContentItem] values.
//
// # Content Items
//
// [ContentItem] is a closed set of kinds:
//
//   - [TextBlock] - a paragraph made of positioned [Line] values
//   - [Table] - rows of cell strings with a bounding box
//   - [Image] - a reference to an image placed on the page
//
// Code that must handle every kind implements [Visitor] and calls
// [ContentItem.Accept]. Adding a kind adds a visitor method, so every
// visitor stops compiling until it handles the new kind.
//
// # Verdicts
//
// Every page carries exactly one [Verdict]. Pages start [VerdictPending],
// are classified [VerdictComplete] or [VerdictNeedsFallback], and move to
// [VerdictFallbackApplied] only when fallback content replaced them.
//
// # Geometry
//
// [BBox] is expressed in page space as (X0, Top, X1, Bottom) with Top
// increasing downward. [Matrix] is a 2D affine transform used when placing
// images drawn through a PDF content stream.
package model
