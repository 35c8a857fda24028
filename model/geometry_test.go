package model

import (
	"math"
	"testing"
)

func TestBBox_Dimensions(t *testing.T) {
	b := BBox{X0: 10, Top: 20, X1: 110, Bottom: 70}

	if b.Width() != 100 {
		t.Errorf("Expected width 100, got %f", b.Width())
	}
	if b.Height() != 50 {
		t.Errorf("Expected height 50, got %f", b.Height())
	}
	if b.Area() != 5000 {
		t.Errorf("Expected area 5000, got %f", b.Area())
	}
	if c := b.Center(); c.X != 60 || c.Y != 45 {
		t.Errorf("Expected center (60,45), got (%f,%f)", c.X, c.Y)
	}
}

func TestBBox_EmptyHasZeroArea(t *testing.T) {
	b := BBox{X0: 10, Top: 20, X1: 5, Bottom: 70}

	if !b.IsEmpty() {
		t.Error("Expected inverted box to be empty")
	}
	if b.Area() != 0 {
		t.Errorf("Expected area 0, got %f", b.Area())
	}
}

func TestBBox_NewFromPoints(t *testing.T) {
	b := NewBBoxFromPoints(Point{X: 50, Y: 10}, Point{X: 20, Y: 40})
	want := BBox{X0: 20, Top: 10, X1: 50, Bottom: 40}
	if b != want {
		t.Errorf("Expected %+v, got %+v", want, b)
	}
}

func TestBBox_ContainsAndIntersects(t *testing.T) {
	a := BBox{X0: 0, Top: 0, X1: 10, Bottom: 10}
	b := BBox{X0: 5, Top: 5, X1: 15, Bottom: 15}
	c := BBox{X0: 20, Top: 20, X1: 30, Bottom: 30}

	if !a.Contains(Point{X: 5, Y: 5}) {
		t.Error("Expected point inside box")
	}
	if a.Contains(Point{X: 11, Y: 5}) {
		t.Error("Expected point outside box")
	}
	if !a.Intersects(b) {
		t.Error("Expected overlapping boxes to intersect")
	}
	if a.Intersects(c) {
		t.Error("Expected disjoint boxes not to intersect")
	}
}

func TestBBox_UnionAndExpand(t *testing.T) {
	a := BBox{X0: 0, Top: 0, X1: 10, Bottom: 10}
	b := BBox{X0: 5, Top: -5, X1: 15, Bottom: 8}

	u := a.Union(b)
	want := BBox{X0: 0, Top: -5, X1: 15, Bottom: 10}
	if u != want {
		t.Errorf("Expected union %+v, got %+v", want, u)
	}

	e := a.Expand(2)
	if e.X0 != -2 || e.Top != -2 || e.X1 != 12 || e.Bottom != 12 {
		t.Errorf("Unexpected expanded box %+v", e)
	}
}

func TestMatrix_TransformAndMultiply(t *testing.T) {
	m := Scale(2, 3).Multiply(Translate(10, 20))
	p := m.Transform(Point{X: 1, Y: 1})

	if p.X != 12 || p.Y != 23 {
		t.Errorf("Expected (12,23), got (%f,%f)", p.X, p.Y)
	}
	if !Identity().IsIdentity() {
		t.Error("Expected identity matrix")
	}
	if m.IsIdentity() {
		t.Error("Expected non-identity matrix")
	}
}

func TestMatrix_UnitSquareBounds(t *testing.T) {
	// 200x100 image placed at (50, 600)
	m := Matrix{200, 0, 0, 100, 50, 600}
	minX, minY, maxX, maxY := m.UnitSquareBounds()

	if minX != 50 || minY != 600 || maxX != 250 || maxY != 700 {
		t.Errorf("Unexpected bounds (%f,%f,%f,%f)", minX, minY, maxX, maxY)
	}

	// Flipped vertically
	flipped := Matrix{100, 0, 0, -50, 0, 300}
	_, minY, _, maxY = flipped.UnitSquareBounds()
	if minY != 250 || maxY != 300 {
		t.Errorf("Expected y range 250..300, got %f..%f", minY, maxY)
	}
}

func TestPoint_Distance(t *testing.T) {
	d := Point{X: 0, Y: 0}.Distance(Point{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Expected distance 5, got %f", d)
	}
}
