// Package drag models one drag gesture: cell-grid geometry, collision
// resolution against droppable regions, and the session state machine that
// carries a gesture from pick-up to settle.
package drag

// Point is a location in terminal cell coordinates.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned cell rectangle. Width and height are in cells;
// a rect with non-positive extent contains nothing.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.IntersectionArea(other) > 0
}

// IntersectionArea returns the overlap area in cells.
func (r Rect) IntersectionArea(other Rect) int {
	if r.Width <= 0 || r.Height <= 0 || other.Width <= 0 || other.Height <= 0 {
		return 0
	}
	w := min(r.X+r.Width, other.X+other.Width) - max(r.X, other.X)
	h := min(r.Y+r.Height, other.Y+other.Height) - max(r.Y, other.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the rectangle's center cell.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// DistanceSquared returns the squared euclidean distance between two points.
// Squared distance preserves ordering and keeps the math integral.
func DistanceSquared(a, b Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
