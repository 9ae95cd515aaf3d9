package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// MemoryDSN selects a transient, process-local database.
const MemoryDSN = ":memory:"

// FilePragmas are applied to file-backed databases. They favour bulk write
// throughput while keeping readers unblocked.
var FilePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// MemoryPragmas are applied to in-memory databases.
var MemoryPragmas = []string{
	"PRAGMA temp_store=MEMORY",
}

// IsMemory reports whether dsn refers to a transient in-memory database.
func IsMemory(dsn string) bool {
	if dsn == "" || dsn == MemoryDSN {
		return true
	}
	return strings.Contains(dsn, "mode=memory")
}

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./points.db". For in-memory
// databases, pass ":memory:" or an empty string. The returned handle is pinned
// to a single connection: every new connection to ":memory:" would otherwise
// see its own empty database. The connection is established eagerly so that
// an unusable location fails here rather than on first use. When pragmas is
// empty, FilePragmas or MemoryPragmas are applied depending on dsn.
func Open(dsn string, pragmas ...string) (*sql.DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if err := RegisterPointFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if len(pragmas) == 0 {
		pragmas = FilePragmas
		if IsMemory(dsn) {
			pragmas = MemoryPragmas
		}
	}
	if err := ApplyPragmas(context.Background(), db, pragmas); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ApplyPragmas executes each PRAGMA statement in order. It also serves as the
// connectivity check for Open.
func ApplyPragmas(ctx context.Context, db *sql.DB, pragmas []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("engine: %q failed: %w", pragma, err)
		}
	}
	return nil
}
