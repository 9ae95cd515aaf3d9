package bench

import (
	"io"
	"log/slog"
	"os"

	"github.com/viant/sqlite-points/point"
)

// Config describes a demo, benchmark or sweep run.
type Config struct {
	// Points is the number of generated points.
	Points int
	// BatchSize is the number of points committed per transaction.
	BatchSize int
	// Scale is the upper (exclusive) bound of each generated coordinate.
	Scale point.Point
	// Center and Radius define the ball query; the box query is the ball's
	// bounding cuboid.
	Center point.Point
	Radius float64
	// Seed makes point generation reproducible.
	Seed uint64

	// StorePath selects the store location; empty means in-memory.
	StorePath string
	// BackupPath is where the store is exported after the run; empty skips
	// the export.
	BackupPath string

	// SampleRows is the number of rows printed per query by Demo.
	SampleRows int
	// QueryRepeats runs each timed query this many times and reports the
	// mean and standard deviation.
	QueryRepeats int
	// Verify cross-checks query hit counts against an exact in-process scan.
	Verify bool
	// ChartPath, when set, receives a PNG chart of the sweep timings.
	ChartPath string

	Out    io.Writer
	Logger *slog.Logger
	Clock  Clock
}

// DefaultConfig returns the configuration of the reference demo: one million
// points in a 100³ cube, a radius-5 query around the centre, exported to
// points_backup.db.
func DefaultConfig() Config {
	return Config{
		Points:       1_000_000,
		BatchSize:    point.DefaultBatchSize,
		Scale:        point.New(100, 100, 100),
		Center:       point.New(50, 50, 50),
		Radius:       5,
		Seed:         42,
		BackupPath:   "points_backup.db",
		SampleRows:   10,
		QueryRepeats: 1,
	}
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = point.DefaultBatchSize
	}
	if c.QueryRepeats <= 0 {
		c.QueryRepeats = 1
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	return c
}

// Case is one point of a sweep matrix.
type Case struct {
	Points int
	Radius float64
}

// DefaultSweep is the reference matrix: 1M, 5M and 10M points, each queried
// with radius 5, 10 and 20.
func DefaultSweep() []Case {
	var cases []Case
	for _, n := range []int{1_000_000, 5_000_000, 10_000_000} {
		for _, r := range []float64{5, 10, 20} {
			cases = append(cases, Case{Points: n, Radius: r})
		}
	}
	return cases
}
