package point

import (
	"fmt"
	"math"
)

// Point is an immutable (x, y, z) triple. Points have no identity beyond their
// coordinates; a store may hold duplicates.
type Point struct {
	X, Y, Z float64
}

// New returns the point (x, y, z).
func New(x, y, z float64) Point { return Point{X: x, Y: y, Z: z} }

// String formats the point as a tuple, e.g. (1, 2.5, 3).
func (p Point) String() string {
	return fmt.Sprintf("(%v, %v, %v)", p.X, p.Y, p.Z)
}

// IsFinite reports whether all coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Dist2 returns the squared Euclidean distance between p and q, evaluated in
// the same order as the SQL ball predicate. The explicit conversions prevent
// fused multiply-add so results agree with SQLite bit for bit.
func (p Point) Dist2(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return float64(dx*dx) + float64(dy*dy) + float64(dz*dz)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Sqrt(p.Dist2(q)) }

// Box is an axis-aligned cuboid with inclusive bounds on every face.
type Box struct {
	Min, Max Point
}

// NewBox builds a box from per-axis bounds.
func NewBox(xmin, xmax, ymin, ymax, zmin, zmax float64) Box {
	return Box{Min: Point{xmin, ymin, zmin}, Max: Point{xmax, ymax, zmax}}
}

// Contains reports whether p lies inside or on the boundary of b.
func (b Box) Contains(p Point) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// Ball is a sphere with an inclusive surface.
type Ball struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies inside or on the surface of b. The radius is
// only used squared, so its sign is ignored.
func (b Ball) Contains(p Point) bool {
	return p.Dist2(b.Center) <= b.Radius*b.Radius
}

// Bounds returns the smallest box enclosing b. Every point of the ball is
// inside the box, so a box query is a superset filter for the ball.
func (b Ball) Bounds() Box {
	c, r := b.Center, math.Abs(b.Radius)
	return NewBox(c.X-r, c.X+r, c.Y-r, c.Y+r, c.Z-r, c.Z+r)
}
