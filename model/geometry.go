package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is a rectangle in page space. Top increases downward, so Top <= Bottom
// for a well-formed box.
type BBox struct {
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	X1     float64 `json:"x1"`
	Bottom float64 `json:"bottom"`
}

// NewBBoxFromPoints creates a bounding box spanning two corner points
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return BBox{
		X0:     math.Min(p1.X, p2.X),
		Top:    math.Min(p1.Y, p2.Y),
		X1:     math.Max(p1.X, p2.X),
		Bottom: math.Max(p1.Y, p2.Y),
	}
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Bottom - b.Top
}

// Area returns the area of the bounding box, zero for degenerate boxes
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Top + b.Bottom) / 2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Top && p.Y <= b.Bottom
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Bottom < other.Top ||
		b.Top > other.Bottom)
}

// Union returns the smallest box containing both boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0:     math.Min(b.X0, other.X0),
		Top:    math.Min(b.Top, other.Top),
		X1:     math.Max(b.X1, other.X1),
		Bottom: math.Max(b.Bottom, other.Bottom),
	}
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X0:     b.X0 - margin,
		Top:    b.Top - margin,
		X1:     b.X1 + margin,
		Bottom: b.Bottom + margin,
	}
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other, i.e. m applied first, then other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// UnitSquareBounds returns the axis-aligned bounds of the unit square mapped
// through m. PDF images are drawn into the unit square of the current
// transformation matrix.
func (m Matrix) UnitSquareBounds() (minX, minY, maxX, maxY float64) {
	corners := [4]Point{
		m.Transform(Point{0, 0}),
		m.Transform(Point{1, 0}),
		m.Transform(Point{0, 1}),
		m.Transform(Point{1, 1}),
	}
	minX, minY = corners[0].X, corners[0].Y
	maxX, maxY = minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return minX, minY, maxX, maxY
}
