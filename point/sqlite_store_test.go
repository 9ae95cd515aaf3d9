package point

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-points/engine"
)

var scenarioPoints = []Point{
	{0, 0, 0},
	{1, 1, 1},
	{5, 5, 5},
	{10, 0, 0},
	{0, 10, 0},
}

func newMemoryStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	s, err := Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func sortPoints(pts []Point) []Point {
	out := slices.Clone(pts)
	slices.SortFunc(out, func(a, b Point) int {
		switch {
		case a.X != b.X:
			return compareFloat(a.X, b.X)
		case a.Y != b.Y:
			return compareFloat(a.Y, b.Y)
		default:
			return compareFloat(a.Z, b.Z)
		}
	})
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// TestSQLiteStore_Scenario exercises the five point example: loading with
// batchSize=2, then box and ball queries with inclusive bounds.
func TestSQLiteStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	n, err := s.BulkLoad(ctx, scenarioPoints, 2)
	if err != nil {
		t.Fatalf("BulkLoad failed: %v", err)
	}
	if n != len(scenarioPoints) {
		t.Fatalf("BulkLoad committed %d points, want %d", n, len(scenarioPoints))
	}

	box, err := s.QueryBoundingBox(ctx, 0, 1, 0, 1, 0, 1)
	if err != nil {
		t.Fatalf("QueryBoundingBox failed: %v", err)
	}
	assert.Equal(t, []Point{{0, 0, 0}, {1, 1, 1}}, sortPoints(box))

	// (1,1,1) is at distance sqrt(3) ~ 1.732 from the origin.
	ball, err := s.QueryBall(ctx, New(0, 0, 0), 1.5)
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0, 0}}, sortPoints(ball))

	ball, err = s.QueryBall(ctx, New(0, 0, 0), 1.8)
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0, 0}, {1, 1, 1}}, sortPoints(ball))

	ball, err = s.QueryBall(ctx, New(0, 0, 0), 1.0)
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0, 0}}, sortPoints(ball))

	cnt, err := s.CountBall(ctx, New(0, 0, 0), 1.8)
	require.NoError(t, err)
	assert.Equal(t, 2, cnt)

	cnt, err = s.CountBoundingBox(ctx, 0, 10, 0, 10, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, cnt)
}

func TestSQLiteStore_BoundaryInclusive(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, err := s.BulkLoad(ctx, []Point{{1, 0.5, 0.5}, {3, 4, 0}, {3, 4, 0.0001}}, 0)
	require.NoError(t, err)

	// x == xmax lies on the face of the box.
	box, err := s.QueryBox(ctx, NewBox(0, 1, 0, 1, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []Point{{1, 0.5, 0.5}}, box)

	// (3,4,0) is exactly 5 away from the origin.
	ball, err := s.QueryBall(ctx, New(0, 0, 0), 5)
	require.NoError(t, err)
	assert.Contains(t, ball, Point{3, 4, 0})
	assert.NotContains(t, ball, Point{3, 4, 0.0001})
}

func TestSQLiteStore_InitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, err := s.BulkLoad(ctx, scenarioPoints, 3)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(scenarioPoints), n)

	box, err := s.QueryBoundingBox(ctx, 0, 1, 0, 1, 0, 1)
	require.NoError(t, err)
	assert.Len(t, box, 2)
}

func TestSQLiteStore_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	dup := []Point{{2, 2, 2}, {2, 2, 2}, {2, 2, 2}}
	_, err := s.BulkLoad(ctx, dup, 2)
	require.NoError(t, err)

	got, err := s.QueryBall(ctx, New(2, 2, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, dup, got)
}

// TestSQLiteStore_PartialLoad verifies that chunks committed before a failing
// chunk remain in the store.
func TestSQLiteStore_PartialLoad(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	pts := []Point{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {math.NaN(), 4, 4}, {5, 5, 5}}
	n, err := s.BulkLoad(ctx, pts, 2)
	require.Error(t, err)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Batch)
	assert.Equal(t, 4, batchErr.Committed)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSQLiteStore_Nearest(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, err := s.BulkLoad(ctx, scenarioPoints, 0)
	require.NoError(t, err)

	got, err := s.Nearest(ctx, New(4, 4, 4), 2)
	require.NoError(t, err)
	assert.Equal(t, []Point{{5, 5, 5}, {1, 1, 1}}, got)

	got, err = s.Nearest(ctx, New(0, 0, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_Closed(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Initialize(ctx))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	_, err = s.BulkLoad(ctx, scenarioPoints, 2)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.QueryBoundingBox(ctx, 0, 1, 0, 1, 0, 1)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.QueryBall(ctx, New(0, 0, 0), 1)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, s.Initialize(ctx), ErrStoreClosed)
	assert.ErrorIs(t, s.ExportTo(ctx, filepath.Join(t.TempDir(), "out.db")), ErrStoreClosed)
}

func TestOpen_StorageUnavailable(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "points.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestNewSQLiteStore_DoesNotCloseDB(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.Close())
	require.NoError(t, db.Ping(), "caller-owned db must stay open")

	_, err = NewSQLiteStore(nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "points.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(ctx))
	_, err = s.BulkLoad(ctx, scenarioPoints, 2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Initialize(ctx))

	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, sortPoints(scenarioPoints), sortPoints(all))
}

func TestSQLiteStore_ExportErrors(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	err := s.ExportTo(ctx, filepath.Join(t.TempDir(), "missing", "out.db"))
	assert.ErrorIs(t, err, ErrExportFailed)

	err = s.ExportTo(ctx, "")
	assert.ErrorIs(t, err, ErrExportFailed)

	err = s.ExportTo(ctx, ":memory:")
	assert.ErrorIs(t, err, ErrExportFailed)
}

func TestSQLiteStore_ExportOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dest := filepath.Join(dir, "points_backup.db")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	s := newMemoryStore(t)
	_, err := s.BulkLoad(ctx, scenarioPoints, 2)
	require.NoError(t, err)
	require.NoError(t, s.ExportTo(ctx, dest))
	require.NoError(t, s.ExportTo(ctx, dest), "repeated export must replace the previous copy")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary export files must not be left behind")

	copyStore, err := Open(dest)
	require.NoError(t, err)
	defer copyStore.Close()
	n, err := copyStore.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(scenarioPoints), n)
}

func TestSQLiteStore_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := newMemoryStore(t, WithLogger(logger))
	_, err := s.BulkLoad(context.Background(), scenarioPoints, 2)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "batch committed")
	require.Contains(t, out, "bulk load completed")
	require.Contains(t, out, `"batches":3`)
}

func TestSQLiteStore_CanceledContext(t *testing.T) {
	s := newMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := s.BulkLoad(ctx, scenarioPoints, 2)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpen_WithPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.db")
	s, err := Open(path, WithPragmas("PRAGMA journal_mode=DELETE", "PRAGMA cache_size=-4096"))
	require.NoError(t, err)
	defer s.Close()

	var journalMode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "delete", journalMode)

	var cacheSize int
	require.NoError(t, s.DB().QueryRow("PRAGMA cache_size").Scan(&cacheSize))
	assert.Equal(t, -4096, cacheSize)
}

func TestSQLiteStore_BatchSizeLargerThanInput(t *testing.T) {
	ctx := context.Background()

	for _, batchSize := range []int{len(scenarioPoints) + 1, math.MaxInt} {
		s := newMemoryStore(t)
		var buf bytes.Buffer
		s.logger = slog.New(slog.NewJSONHandler(&buf, nil))

		n, err := s.BulkLoad(ctx, scenarioPoints, batchSize)
		require.NoError(t, err, "batchSize=%d", batchSize)
		assert.Equal(t, len(scenarioPoints), n)
		assert.Contains(t, buf.String(), `"batches":1`)

		n, err = s.Load(ctx, slices.Values(scenarioPoints), batchSize)
		require.NoError(t, err, "batchSize=%d", batchSize)
		assert.Equal(t, len(scenarioPoints), n)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2*len(scenarioPoints), count)
	}
}

func TestSQLiteStore_LoadChunksStream(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	pts := make([]Point, 25)
	for i := range pts {
		pts[i] = New(float64(i), 0, 0)
	}
	n, err := s.Load(ctx, slices.Values(pts), 10)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, sortPoints(pts), sortPoints(all))
}

func TestSQLiteStore_ExportToOwnFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "points.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(ctx))
	_, err = s.BulkLoad(ctx, scenarioPoints, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ExportTo(ctx, path), ErrExportFailed)
	// The same file reached through a different spelling of the path.
	assert.ErrorIs(t, s.ExportTo(ctx, filepath.Join(dir, ".", "points.db")), ErrExportFailed)

	_, err = s.BulkLoad(ctx, scenarioPoints, 2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*len(scenarioPoints), n, "writes after a rejected export must persist")
}

func TestSQLiteStore_ExportFromFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "points.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Initialize(ctx))
	_, err = s.BulkLoad(ctx, scenarioPoints, 2)
	require.NoError(t, err)

	dest := filepath.Join(dir, "copy.db")
	require.NoError(t, s.ExportTo(ctx, dest))

	copyStore, err := Open(dest)
	require.NoError(t, err)
	defer copyStore.Close()
	n, err := copyStore.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(scenarioPoints), n)
}

func TestSQLiteStore_NegativeRadius(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, err := s.BulkLoad(ctx, scenarioPoints, 0)
	require.NoError(t, err)

	pos, err := s.QueryBall(ctx, New(0, 0, 0), 1.8)
	require.NoError(t, err)
	neg, err := s.QueryBall(ctx, New(0, 0, 0), -1.8)
	require.NoError(t, err)
	assert.Equal(t, sortPoints(pos), sortPoints(neg))

	cnt, err := s.CountBall(ctx, New(0, 0, 0), -1.8)
	require.NoError(t, err)
	assert.Equal(t, 2, cnt)

	ball := Ball{Center: New(0, 0, 0), Radius: -1.8}
	box, err := s.QueryBox(ctx, ball.Bounds())
	require.NoError(t, err)
	for _, p := range neg {
		assert.Contains(t, box, p)
		assert.True(t, ball.Contains(p))
	}
}
