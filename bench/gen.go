package bench

import (
	"iter"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/viant/sqlite-points/point"
)

// Generate yields n points with coordinates drawn uniformly from
// [0, scale.X) x [0, scale.Y) x [0, scale.Z). The sequence depends only on
// n, scale and seed, so repeated runs load identical data.
func Generate(n int, scale point.Point, seed uint64) iter.Seq[point.Point] {
	return func(yield func(point.Point) bool) {
		src := rand.NewPCG(seed, seed)
		ux := distuv.Uniform{Min: 0, Max: scale.X, Src: src}
		uy := distuv.Uniform{Min: 0, Max: scale.Y, Src: src}
		uz := distuv.Uniform{Min: 0, Max: scale.Z, Src: src}
		for i := 0; i < n; i++ {
			if !yield(point.New(ux.Rand(), uy.Rand(), uz.Rand())) {
				return
			}
		}
	}
}

// GenerateSlice materializes Generate.
func GenerateSlice(n int, scale point.Point, seed uint64) []point.Point {
	out := make([]point.Point, 0, max(n, 0))
	for p := range Generate(n, scale, seed) {
		out = append(out, p)
	}
	return out
}
