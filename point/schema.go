package point

import (
	"context"
	"database/sql"
)

// Table and index names used by the point store.
const (
	TableName = "points"
	IndexName = "idx_xyz"
)

const pointsSchema = `
CREATE TABLE IF NOT EXISTS points (
    x REAL NOT NULL,
    y REAL NOT NULL,
    z REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_xyz ON points (x, y, z);
`

// EnsureSchema creates the points table and its composite (x, y, z) index in
// the provided database if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := db.ExecContext(ctx, pointsSchema)
	return err
}
