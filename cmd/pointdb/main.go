// Command pointdb loads random 3D points into an embedded SQLite store and
// compares a bounding-box query with an exact ball query.
//
// Without flags it runs a short demo that loads one million points, prints
// sample rows of both queries and exports the store to points_backup.db.
// -benchmark runs one timed configuration; -sweep runs the 1M/5M/10M points
// by radius 5/10/20 matrix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/viant/sqlite-points/bench"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "pointdb: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	def := bench.DefaultConfig()
	fs := flag.NewFlagSet("pointdb", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var benchmark, sweep bool
	fs.BoolVar(&benchmark, "benchmark", false, "Run benchmark instead of the simple demo")
	fs.BoolVar(&benchmark, "b", false, "Shorthand for -benchmark")
	fs.BoolVar(&sweep, "sweep", false, "Run a sweep of benchmarks with different parameters")
	fs.BoolVar(&sweep, "s", false, "Shorthand for -sweep")

	points := fs.Int("points", def.Points, "Number of generated points (demo and benchmark)")
	batch := fs.Int("batch", def.BatchSize, "Points committed per transaction")
	radius := fs.Float64("radius", def.Radius, "Query radius around the centre (demo and benchmark)")
	seed := fs.Uint64("seed", def.Seed, "Random seed for point generation")
	dbPath := fs.String("db", "", "Store location (empty for in-memory)")
	backup := fs.String("backup", def.BackupPath, "Export destination (empty to skip)")
	repeats := fs.Int("repeats", def.QueryRepeats, "Timed repetitions of each query")
	verify := fs.Bool("verify", false, "Cross-check query hit counts against an exact scan")
	chart := fs.String("chart", "", "Write a chart of sweep timings to this file (png, svg, pdf)")
	sweepPoints := fs.String("sweep-points", "", "Comma-separated point counts for -sweep (default 1000000,5000000,10000000)")
	sweepRadii := fs.String("sweep-radii", "", "Comma-separated radii for -sweep (default 5,10,20)")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := def
	cfg.Points = *points
	cfg.BatchSize = *batch
	cfg.Radius = *radius
	cfg.Seed = *seed
	cfg.StorePath = *dbPath
	cfg.BackupPath = *backup
	cfg.QueryRepeats = *repeats
	cfg.Verify = *verify
	cfg.ChartPath = *chart
	cfg.Out = stdout
	cfg.Logger = logger

	switch {
	case sweep:
		cases, err := sweepCases(*sweepPoints, *sweepRadii)
		if err != nil {
			return err
		}
		_, err = bench.Sweep(ctx, cfg, cases)
		return err
	case benchmark:
		_, err := bench.Benchmark(ctx, cfg)
		return err
	default:
		return bench.Demo(ctx, cfg)
	}
}

// sweepCases builds the sweep matrix, falling back to the defaults for any
// axis left empty.
func sweepCases(pointsList, radiiList string) ([]bench.Case, error) {
	counts := []int{1_000_000, 5_000_000, 10_000_000}
	radii := []float64{5, 10, 20}
	if pointsList != "" {
		v, err := parseCSVIntSlice(pointsList)
		if err != nil {
			return nil, fmt.Errorf("invalid -sweep-points: %w", err)
		}
		counts = v
	}
	if radiiList != "" {
		v, err := parseCSVFloatSlice(radiiList)
		if err != nil {
			return nil, fmt.Errorf("invalid -sweep-radii: %w", err)
		}
		radii = v
	}
	cases := make([]bench.Case, 0, len(counts)*len(radii))
	for _, n := range counts {
		for _, r := range radii {
			cases = append(cases, bench.Case{Points: n, Radius: r})
		}
	}
	return cases, nil
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseCSVIntSlice parses a comma-separated list of ints, accepting _ digit
// separators (e.g. 1_000_000)
func parseCSVIntSlice(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, int(v))
	}
	return out, nil
}
