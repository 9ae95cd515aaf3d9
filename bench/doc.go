// Package bench drives the point store the way the pointdb command does: it
// generates reproducible random points, loads them in batches, times the
// bounding-box and ball queries and exports the store to a file.
//
// Runs are configured through an explicit Config value; the package keeps no
// process-wide state.
package bench
