// Package canvas contains the geometry, colors, and pixel rasters that programs
// paint onto.
package canvas

import "fmt"

// A Point is a 2D integer point. X increases to the right and Y increases
// upward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// A Rect is the half-open region [Min.X, Max.X) × [Min.Y, Max.Y).
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// R is shorthand for a rectangle with the given corners.
func R(x0, y0, x1, y1 int) Rect {
	return Rect{Min: Point{X: x0, Y: y0}, Max: Point{X: x1, Y: y1}}
}

// String returns the rectangle as "(x0, y0)-(x1, y1)".
func (r Rect) String() string {
	return r.Min.String() + "-" + r.Max.String()
}

// Dx returns the width of the rectangle.
func (r Rect) Dx() int {
	return r.Max.X - r.Min.X
}

// Dy returns the height of the rectangle.
func (r Rect) Dy() int {
	return r.Max.Y - r.Min.Y
}

// Area returns the area of the rectangle. Cost formulas divide by it, so it
// is returned as a float.
func (r Rect) Area() float64 {
	return float64(r.Dx()) * float64(r.Dy())
}

// Empty returns true if the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Intersects returns true if the rects share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	return r.Max.X > o.Min.X && r.Min.X < o.Max.X && r.Max.Y > o.Min.Y && r.Min.Y < o.Max.Y
}

// Contains returns true if this rect contains the given rect.
func (r Rect) Contains(o Rect) bool {
	return r.Min.X <= o.Min.X && r.Max.X >= o.Max.X && r.Min.Y <= o.Min.Y && r.Max.Y >= o.Max.Y
}

// ContainsPoint returns true if the pixel at p is inside the rect.
func (r Rect) ContainsPoint(p Point) bool {
	return r.Min.X <= p.X && p.X < r.Max.X && r.Min.Y <= p.Y && p.Y < r.Max.Y
}

// Union returns the rectangle covering both rects. It only succeeds when the
// two rects share a complete edge, so that their union is itself a rectangle.
func (r Rect) Union(o Rect) (Rect, bool) {
	switch {
	case r.Min.X == o.Min.X && r.Max.X == o.Max.X:
		if r.Max.Y == o.Min.Y {
			return Rect{Min: r.Min, Max: o.Max}, true
		}
		if o.Max.Y == r.Min.Y {
			return Rect{Min: o.Min, Max: r.Max}, true
		}
	case r.Min.Y == o.Min.Y && r.Max.Y == o.Max.Y:
		if r.Max.X == o.Min.X {
			return Rect{Min: r.Min, Max: o.Max}, true
		}
		if o.Max.X == r.Min.X {
			return Rect{Min: o.Min, Max: r.Max}, true
		}
	}
	return Rect{}, false
}
