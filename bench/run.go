package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/viant/sqlite-points/index/bruteforce"
	"github.com/viant/sqlite-points/point"
)

// ErrVerifyMismatch is returned when SQLite hit counts disagree with the
// exact in-process scan.
var ErrVerifyMismatch = errors.New("bench: verification mismatch")

// Result holds the timings and hit counts of one benchmark run.
type Result struct {
	Points    int
	BatchSize int
	Radius    float64

	Generate time.Duration
	Insert   time.Duration
	BBox     time.Duration
	Sphere   time.Duration
	// Standard deviations are zero unless Config.QueryRepeats > 1.
	BBoxStdDev   time.Duration
	SphereStdDev time.Duration

	BBoxHits   int
	SphereHits int
}

func openStore(ctx context.Context, cfg Config) (*point.SQLiteStore, error) {
	s, err := point.Open(cfg.StorePath, point.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Demo loads cfg.Points points, runs one bounding-box and one ball query
// around cfg.Center, prints up to cfg.SampleRows rows of each, exports the
// store to cfg.BackupPath and prints the total time.
func Demo(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	total := lap(cfg.Clock)

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Load(ctx, Generate(cfg.Points, cfg.Scale, cfg.Seed), cfg.BatchSize); err != nil {
		return err
	}

	ball := point.Ball{Center: cfg.Center, Radius: cfg.Radius}
	bboxRows, err := s.QueryBox(ctx, ball.Bounds())
	if err != nil {
		return err
	}
	ballRows, err := s.QueryBall(ctx, ball.Center, ball.Radius)
	if err != nil {
		return err
	}

	for _, p := range head(bboxRows, cfg.SampleRows) {
		fmt.Fprintf(cfg.Out, "BBox: %v\n", p)
	}
	for _, p := range head(ballRows, cfg.SampleRows) {
		fmt.Fprintf(cfg.Out, "Sphere: %v\n", p)
	}

	if cfg.BackupPath != "" {
		if err := s.ExportTo(ctx, cfg.BackupPath); err != nil {
			return err
		}
	}
	if err := s.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cfg.Out, "Total time: %.2f seconds\n", total().Seconds())
	return nil
}

func head(pts []point.Point, n int) []point.Point {
	if n < 0 || n > len(pts) {
		n = len(pts)
	}
	return pts[:n]
}

// Benchmark runs a single timed configuration: generate, batched insert,
// bounding-box query and ball query, followed by an export to
// cfg.BackupPath. Progress and a summary are written to cfg.Out.
func Benchmark(ctx context.Context, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	res := Result{Points: cfg.Points, BatchSize: cfg.BatchSize, Radius: cfg.Radius}
	out := cfg.Out

	fmt.Fprintf(out, "\n--- Benchmark start ---\n")
	fmt.Fprintf(out, "Points: %s | Batch size: %d | Center: %v | Radius: %v\n",
		humanize.Comma(int64(cfg.Points)), cfg.BatchSize, cfg.Center, cfg.Radius)
	fmt.Fprintf(out, "Scale: %v\n", cfg.Scale)

	elapsed := lap(cfg.Clock)
	pts := GenerateSlice(cfg.Points, cfg.Scale, cfg.Seed)
	res.Generate = elapsed()
	fmt.Fprintf(out, "[gen] generated %s points in %s\n", humanize.Comma(int64(len(pts))), seconds(res.Generate))

	s, err := openStore(ctx, cfg)
	if err != nil {
		return res, err
	}
	defer s.Close()

	elapsed = lap(cfg.Clock)
	if _, err := s.BulkLoad(ctx, pts, cfg.BatchSize); err != nil {
		return res, err
	}
	res.Insert = elapsed()
	fmt.Fprintf(out, "[insert] batch=%s -> %s\n", humanize.Comma(int64(cfg.BatchSize)), seconds(res.Insert))

	ball := point.Ball{Center: cfg.Center, Radius: cfg.Radius}
	box := ball.Bounds()

	var bboxRows, ballRows []point.Point
	res.BBox, res.BBoxStdDev, err = timeQuery(cfg, func() error {
		var err error
		bboxRows, err = s.QueryBox(ctx, box)
		return err
	})
	if err != nil {
		return res, err
	}
	res.BBoxHits = len(bboxRows)
	fmt.Fprintf(out, "[bbox] rows=%s -> %s\n", humanize.Comma(int64(res.BBoxHits)), seconds(res.BBox))

	res.Sphere, res.SphereStdDev, err = timeQuery(cfg, func() error {
		var err error
		ballRows, err = s.QueryBall(ctx, ball.Center, ball.Radius)
		return err
	})
	if err != nil {
		return res, err
	}
	res.SphereHits = len(ballRows)
	fmt.Fprintf(out, "[sphere] rows=%s -> %s\n", humanize.Comma(int64(res.SphereHits)), seconds(res.Sphere))

	if cfg.Verify {
		if err := verify(ctx, cfg, s, pts, res); err != nil {
			return res, err
		}
	}

	if cfg.BackupPath != "" {
		if err := s.ExportTo(ctx, cfg.BackupPath); err != nil {
			return res, err
		}
	}
	if err := s.Close(); err != nil {
		return res, err
	}
	cfg.Logger.InfoContext(ctx, "benchmark completed",
		"points", res.Points, "radius", res.Radius, "bboxHits", res.BBoxHits, "sphereHits", res.SphereHits)

	writeSummary(out, res, cfg.QueryRepeats > 1)
	return res, nil
}

// timeQuery runs fn cfg.QueryRepeats times and returns the mean duration
// and its sample standard deviation.
func timeQuery(cfg Config, fn func() error) (time.Duration, time.Duration, error) {
	samples := make([]float64, 0, cfg.QueryRepeats)
	for i := 0; i < cfg.QueryRepeats; i++ {
		elapsed := lap(cfg.Clock)
		if err := fn(); err != nil {
			return 0, 0, err
		}
		samples = append(samples, elapsed().Seconds())
	}
	if len(samples) == 1 {
		return fromSeconds(samples[0]), 0, nil
	}
	mean, std := stat.MeanStdDev(samples, nil)
	return fromSeconds(mean), fromSeconds(std), nil
}

func fromSeconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

func verify(ctx context.Context, cfg Config, s *point.SQLiteStore, pts []point.Point, res Result) error {
	oracle, err := bruteforce.New(pts)
	if err != nil {
		return err
	}
	ball := point.Ball{Center: cfg.Center, Radius: cfg.Radius}
	wantBox := len(oracle.Box(ball.Bounds()))
	wantBall := len(oracle.Ball(ball))

	box := ball.Bounds()
	gotBox, err := s.CountBoundingBox(ctx, box.Min.X, box.Max.X, box.Min.Y, box.Max.Y, box.Min.Z, box.Max.Z)
	if err != nil {
		return err
	}
	gotBall, err := s.CountBall(ctx, ball.Center, ball.Radius)
	if err != nil {
		return err
	}
	if gotBox != wantBox || res.BBoxHits != wantBox {
		return fmt.Errorf("%w: bbox rows=%d count=%d, exact scan=%d", ErrVerifyMismatch, res.BBoxHits, gotBox, wantBox)
	}
	if gotBall != wantBall || res.SphereHits != wantBall {
		return fmt.Errorf("%w: sphere rows=%d count=%d, exact scan=%d", ErrVerifyMismatch, res.SphereHits, gotBall, wantBall)
	}
	fmt.Fprintf(cfg.Out, "[verify] bbox=%s sphere=%s match exact scan\n",
		humanize.Comma(int64(wantBox)), humanize.Comma(int64(wantBall)))
	return nil
}

// Sweep runs Benchmark for every case, varying the point count and radius of
// cfg. When cfg.ChartPath is set a chart of the query timings is written
// after the last case.
func Sweep(ctx context.Context, cfg Config, cases []Case) ([]Result, error) {
	cfg = cfg.withDefaults()
	if len(cases) == 0 {
		cases = DefaultSweep()
	}
	results := make([]Result, 0, len(cases))
	for i, c := range cases {
		run := cfg
		run.Points = c.Points
		run.Radius = c.Radius
		cfg.Logger.InfoContext(ctx, "sweep case started", "case", i+1, "of", len(cases), "points", c.Points, "radius", c.Radius)
		res, err := Benchmark(ctx, run)
		if err != nil {
			return results, fmt.Errorf("bench: sweep case %d (points=%d radius=%v): %w", i+1, c.Points, c.Radius, err)
		}
		results = append(results, res)
	}
	writeSweepTable(cfg.Out, results)
	if cfg.ChartPath != "" {
		if err := WriteChart(results, cfg.ChartPath); err != nil {
			return results, err
		}
		fmt.Fprintf(cfg.Out, "chart written to %s\n", cfg.ChartPath)
	}
	return results, nil
}
