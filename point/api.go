package point

import "context"

// DefaultBatchSize bounds the number of points committed per transaction
// during a bulk load.
const DefaultBatchSize = 10_000

// Store defines the point-store API: a multiset of 3D points that is loaded
// once and then queried. Implementations are not safe for concurrent use.
type Store interface {
	// Initialize ensures the point collection and its (x, y, z) index exist.
	// It is safe to call more than once.
	Initialize(ctx context.Context) error

	// BulkLoad appends points in chunks of at most batchSize, committing
	// each chunk before the next begins. It returns the number of points
	// committed, which is less than len(points) when a chunk fails.
	BulkLoad(ctx context.Context, points []Point, batchSize int) (int, error)

	// QueryBoundingBox returns every stored point inside the inclusive
	// cuboid. The result is unordered.
	QueryBoundingBox(ctx context.Context, xmin, xmax, ymin, ymax, zmin, zmax float64) ([]Point, error)

	// QueryBall returns every stored point whose distance to center is at
	// most radius. The result is unordered.
	QueryBall(ctx context.Context, center Point, radius float64) ([]Point, error)

	// ExportTo writes a consistent, file-backed copy of the store to dest.
	ExportTo(ctx context.Context, dest string) error

	// Close releases the underlying storage. It is idempotent.
	Close() error
}
