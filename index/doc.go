// Package index defines a minimal abstraction for in-process point indexes
// that can be built from a point set and answer the same box, ball and
// nearest-neighbour queries as the SQLite-backed store.
// Implementations in this module include a brute-force baseline.
package index
