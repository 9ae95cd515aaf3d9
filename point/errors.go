package point

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable is returned when the underlying database cannot be
	// opened or created.
	ErrStorageUnavailable = errors.New("point: storage unavailable")

	// ErrStoreClosed is returned by every operation attempted after Close.
	ErrStoreClosed = errors.New("point: store closed")

	// ErrExportFailed is returned when a copy of the store could not be
	// written to its destination.
	ErrExportFailed = errors.New("point: export failed")

	// ErrInvalidPoint is returned when a point has a NaN or infinite
	// coordinate. SQLite would store NaN as NULL.
	ErrInvalidPoint = errors.New("point: invalid point")
)

// BatchError reports a chunk that failed to commit during a bulk load.
// Chunks committed before it remain in the store.
//
// The original underlying error can be accessed via errors.Unwrap.
type BatchError struct {
	// Batch is the zero-based index of the failed chunk.
	Batch int
	// Committed is the number of points persisted before the failure.
	Committed int
	cause     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("point: batch %d failed after %d committed points: %v", e.Batch, e.Committed, e.cause)
}

func (e *BatchError) Unwrap() error { return e.cause }
