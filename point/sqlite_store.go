package point

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/viant/sqlite-points/engine"
)

const (
	insertSQL = `INSERT INTO points (x, y, z) VALUES (?, ?, ?)`

	boxPredicate = `x BETWEEN ? AND ?
  AND y BETWEEN ? AND ?
  AND z BETWEEN ? AND ?`

	ballPredicate = `(x - ?) * (x - ?) + (y - ?) * (y - ?) + (z - ?) * (z - ?) <= ? * ?`
)

// SQLiteStore is a Store backed by an embedded SQLite database. Filtering and
// indexing are delegated to SQLite: the bounding-box query is a range scan on
// idx_xyz and the ball query evaluates the distance for every candidate row.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	owned  bool
	closed bool
	logger *slog.Logger
}

// Open creates a store. An empty path or ":memory:" selects a transient,
// process-local database; any other path is a file-backed database that is
// created when missing. Failure to open the location is reported as
// ErrStorageUnavailable.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	o := applyOptions(opts)
	db, err := engine.Open(path, o.pragmas...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, displayPath(path), err)
	}
	s := newSQLiteStore(db, o)
	s.path = path
	s.owned = true
	s.logger.Debug("point store opened", "path", displayPath(path), "memory", engine.IsMemory(path))
	return s, nil
}

// NewSQLiteStore wraps an already open database. The caller keeps ownership
// of db: Close marks the store closed but does not close db.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db is nil", ErrStorageUnavailable)
	}
	return newSQLiteStore(db, applyOptions(opts)), nil
}

func newSQLiteStore(db *sql.DB, o options) *SQLiteStore {
	return &SQLiteStore{db: db, logger: o.logger}
}

// DB exposes the underlying handle, e.g. for ad-hoc SQL.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Initialize creates the points table and idx_xyz when they are missing.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if s.closed {
		return ErrStoreClosed
	}
	if err := EnsureSchema(ctx, s.db); err != nil {
		return fmt.Errorf("point: initialize schema: %w", err)
	}
	return nil
}

// BulkLoad inserts points in chunks of at most batchSize (DefaultBatchSize
// when batchSize <= 0). Each chunk is one transaction; when a chunk fails the
// earlier chunks stay committed and a *BatchError is returned together with
// the number of points already persisted.
func (s *SQLiteStore) BulkLoad(ctx context.Context, points []Point, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	chunks := func(yield func([]Point) bool) {
		for i := 0; i < len(points); {
			end := i + min(batchSize, len(points)-i)
			if !yield(points[i:end]) {
				return
			}
			i = end
		}
	}
	return s.loadChunks(ctx, chunks, batchSize)
}

// Load is the streaming form of BulkLoad. At most one chunk of points is held
// in memory at a time.
func (s *SQLiteStore) Load(ctx context.Context, seq iter.Seq[Point], batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return s.loadChunks(ctx, chunked(seq, batchSize), batchSize)
}

// chunked groups seq into slices of size points. The yielded slice is reused
// between chunks.
func chunked(seq iter.Seq[Point], size int) iter.Seq[[]Point] {
	return func(yield func([]Point) bool) {
		batch := make([]Point, 0, min(size, DefaultBatchSize))
		for p := range seq {
			batch = append(batch, p)
			if len(batch) == size {
				if !yield(batch) {
					return
				}
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

func (s *SQLiteStore) loadChunks(ctx context.Context, chunks iter.Seq[[]Point], batchSize int) (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	committed, batches := 0, 0
	var err error
	for batch := range chunks {
		if err = s.insertBatch(ctx, batch); err != nil {
			break
		}
		committed += len(batch)
		batches++
		s.logger.DebugContext(ctx, "batch committed", "batch", batches, "size", len(batch), "total", committed)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk load failed", "batch", batches, "committed", committed, "error", err)
		return committed, &BatchError{Batch: batches, Committed: committed, cause: err}
	}
	s.logger.InfoContext(ctx, "bulk load completed", "count", committed, "batches", batches, "batchSize", batchSize)
	return committed, nil
}

func (s *SQLiteStore) insertBatch(ctx context.Context, batch []Point) error {
	for _, p := range batch {
		if !p.IsFinite() {
			return fmt.Errorf("%w: %v", ErrInvalidPoint, p)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range batch {
		if _, err := stmt.ExecContext(ctx, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QueryBoundingBox returns every point with xmin <= x <= xmax, ymin <= y <=
// ymax and zmin <= z <= zmax. The result is unordered.
func (s *SQLiteStore) QueryBoundingBox(ctx context.Context, xmin, xmax, ymin, ymax, zmin, zmax float64) ([]Point, error) {
	return s.query(ctx, `SELECT x, y, z FROM points WHERE `+boxPredicate, xmin, xmax, ymin, ymax, zmin, zmax)
}

// QueryBox is QueryBoundingBox for a Box value.
func (s *SQLiteStore) QueryBox(ctx context.Context, b Box) ([]Point, error) {
	return s.QueryBoundingBox(ctx, b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)
}

// QueryBall returns every point whose squared distance to center is at most
// radius². The result is unordered. Only radius² is compared, so a negative
// radius selects the same points as its absolute value.
func (s *SQLiteStore) QueryBall(ctx context.Context, center Point, radius float64) ([]Point, error) {
	return s.query(ctx, `SELECT x, y, z FROM points WHERE `+ballPredicate, ballArgs(center, radius)...)
}

// CountBoundingBox returns the number of points QueryBoundingBox would return.
func (s *SQLiteStore) CountBoundingBox(ctx context.Context, xmin, xmax, ymin, ymax, zmin, zmax float64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM points WHERE `+boxPredicate, xmin, xmax, ymin, ymax, zmin, zmax)
}

// CountBall returns the number of points QueryBall would return, with the
// same treatment of negative radii.
func (s *SQLiteStore) CountBall(ctx context.Context, center Point, radius float64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM points WHERE `+ballPredicate, ballArgs(center, radius)...)
}

// Nearest returns up to k points ordered by increasing distance to center.
func (s *SQLiteStore) Nearest(ctx context.Context, center Point, k int) ([]Point, error) {
	if k <= 0 {
		if s.closed {
			return nil, ErrStoreClosed
		}
		return nil, nil
	}
	q := `SELECT x, y, z FROM points ORDER BY ` + engine.Dist2Function + `(x, y, z, ?, ?, ?) LIMIT ?`
	return s.query(ctx, q, center.X, center.Y, center.Z, k)
}

// Count returns the number of stored points.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM points`)
}

// All returns every stored point in unspecified order.
func (s *SQLiteStore) All(ctx context.Context) ([]Point, error) {
	return s.query(ctx, `SELECT x, y, z FROM points`)
}

func ballArgs(c Point, r float64) []any {
	return []any{c.X, c.X, c.Y, c.Y, c.Z, c.Z, r, r}
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Point, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) count(ctx context.Context, q string, args ...any) (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ExportTo writes a consistent file-backed copy of the store, schema and
// contents, to dest. The copy is produced with VACUUM INTO into a temporary
// file next to dest and then renamed over it, so dest is either the previous
// file or the complete new copy. Failures are reported as ErrExportFailed.
func (s *SQLiteStore) ExportTo(ctx context.Context, dest string) error {
	if s.closed {
		return ErrStoreClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if dest == "" || engine.IsMemory(dest) {
		return fmt.Errorf("%w: destination %q is not a file path", ErrExportFailed, dest)
	}
	own, err := s.mainFile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if own != "" && sameFile(own, dest) {
		return fmt.Errorf("%w: destination %q is the store's own database file", ErrExportFailed, dest)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	done := false
	defer func() {
		if !done {
			_ = os.Remove(tmpPath)
		}
	}()

	// VACUUM INTO accepts an existing file only when it is empty.
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmpPath); err != nil {
		return fmt.Errorf("%w: vacuum into %s: %w", ErrExportFailed, tmpPath, err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dest + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	done = true
	s.logger.InfoContext(ctx, "point store exported", "dest", dest)
	return nil
}

// mainFile returns the path of the main database file, or "" for an
// in-memory database.
func (s *SQLiteStore) mainFile(ctx context.Context) (string, error) {
	var file sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT file FROM pragma_database_list WHERE name = 'main'`).Scan(&file)
	if err != nil {
		return "", err
	}
	return file.String, nil
}

// sameFile reports whether a and b name the same file. Paths that do not
// exist yet are compared in absolute, cleaned form.
func sameFile(a, b string) bool {
	if ai, err := os.Stat(a); err == nil {
		if bi, err := os.Stat(b); err == nil {
			return os.SameFile(ai, bi)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Close releases the database handle when the store opened it. Calling Close
// more than once is a no-op.
func (s *SQLiteStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("point store closed", "path", displayPath(s.path))
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func displayPath(path string) string {
	if engine.IsMemory(path) {
		return engine.MemoryDSN
	}
	return path
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
