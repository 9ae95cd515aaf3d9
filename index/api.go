package index

import "github.com/viant/sqlite-points/point"

// Index defines an in-process point index with the query semantics of
// point.Store: inclusive bounds, unordered box and ball results.
type Index interface {
	// Build replaces the indexed set with points. Non-finite points are
	// rejected with point.ErrInvalidPoint.
	Build(points []point.Point) error

	// Box returns every indexed point inside b.
	Box(b point.Box) []point.Point

	// Ball returns every indexed point inside b.
	Ball(b point.Ball) []point.Point

	// Nearest returns up to k points ordered by increasing distance to
	// center. k <= 0 returns all points.
	Nearest(center point.Point, k int) []point.Point

	// Len returns the number of indexed points.
	Len() int
}
