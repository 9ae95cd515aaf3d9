// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections with the PRAGMAs used by point
// stores and registering the point_dist2 SQL scalar function. Other packages
// share the same driver instance through Open.
package engine
