package bruteforce

import (
	"fmt"
	"sort"

	"github.com/viant/sqlite-points/index"
	"github.com/viant/sqlite-points/point"
)

// Index is a simple brute-force point index.
type Index struct {
	points []point.Point
}

// New builds an index over points.
func New(points []point.Point) (*Index, error) {
	i := &Index{}
	if err := i.Build(points); err != nil {
		return nil, err
	}
	return i, nil
}

// Build copies points into the index.
func (i *Index) Build(points []point.Point) error {
	for j, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("bruteforce: point %d: %w: %v", j, point.ErrInvalidPoint, p)
		}
	}
	i.points = append([]point.Point(nil), points...)
	return nil
}

// Box returns every point inside b.
func (i *Index) Box(b point.Box) []point.Point {
	var out []point.Point
	for _, p := range i.points {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Ball returns every point inside b.
func (i *Index) Ball(b point.Ball) []point.Point {
	var out []point.Point
	for _, p := range i.points {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Nearest returns top-k by increasing squared distance. Ties keep insertion
// order.
func (i *Index) Nearest(center point.Point, k int) []point.Point {
	if len(i.points) == 0 {
		return nil
	}
	type scored struct {
		idx   int
		dist2 float64
	}
	scoreds := make([]scored, len(i.points))
	for j, p := range i.points {
		scoreds[j] = scored{idx: j, dist2: p.Dist2(center)}
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].dist2 < scoreds[b].dist2 })
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	out := make([]point.Point, k)
	for n := 0; n < k; n++ {
		out[n] = i.points[scoreds[n].idx]
	}
	return out
}

// Len returns the number of indexed points.
func (i *Index) Len() int { return len(i.points) }

// Points returns the indexed points in insertion order.
func (i *Index) Points() []point.Point { return i.points }

var _ index.Index = (*Index)(nil)
