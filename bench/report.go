package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func withSpread(mean, std time.Duration, spread bool) string {
	if !spread {
		return seconds(mean)
	}
	return fmt.Sprintf("%s ±%s", seconds(mean), seconds(std))
}

func writeSummary(w io.Writer, r Result, spread bool) {
	fmt.Fprintf(w, "\n--- Benchmark summary ---\n")
	fmt.Fprintf(w, "generate : %s\n", seconds(r.Generate))
	fmt.Fprintf(w, "insert   : %s  (batch=%s)\n", seconds(r.Insert), humanize.Comma(int64(r.BatchSize)))
	fmt.Fprintf(w, "bbox     : %s  (hits=%s)\n", withSpread(r.BBox, r.BBoxStdDev, spread), humanize.Comma(int64(r.BBoxHits)))
	fmt.Fprintf(w, "sphere   : %s (hits=%s)\n", withSpread(r.Sphere, r.SphereStdDev, spread), humanize.Comma(int64(r.SphereHits)))
	fmt.Fprintf(w, "--- Benchmark end ---\n\n")
}

func writeSweepTable(w io.Writer, results []Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "--- Sweep summary ---\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "points\tradius\tinsert\tbbox\tsphere\tbbox hits\tsphere hits\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\t%s\t%s\t\n",
			humanize.Comma(int64(r.Points)), r.Radius,
			seconds(r.Insert), seconds(r.BBox), seconds(r.Sphere),
			humanize.Comma(int64(r.BBoxHits)), humanize.Comma(int64(r.SphereHits)))
	}
	_ = tw.Flush()
}
