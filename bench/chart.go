package bench

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WriteChart saves a line chart of query time (ms) against radius, one bbox
// and one sphere series per point count. The image format follows the file
// extension of path (png, svg, pdf...).
func WriteChart(results []Result, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("bench: no results to chart")
	}

	byPoints := make(map[int][]Result)
	var counts []int
	for _, r := range results {
		if _, ok := byPoints[r.Points]; !ok {
			counts = append(counts, r.Points)
		}
		byPoints[r.Points] = append(byPoints[r.Points], r)
	}
	sort.Ints(counts)

	p := plot.New()
	p.Title.Text = "Point store query time"
	p.X.Label.Text = "Radius"
	p.Y.Label.Text = "Query time (ms)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, n := range counts {
		rs := byPoints[n]
		sort.Slice(rs, func(a, b int) bool { return rs[a].Radius < rs[b].Radius })
		bboxPts := make(plotter.XYs, len(rs))
		spherePts := make(plotter.XYs, len(rs))
		for j, r := range rs {
			bboxPts[j] = plotter.XY{X: r.Radius, Y: float64(r.BBox.Microseconds()) / 1000}
			spherePts[j] = plotter.XY{X: r.Radius, Y: float64(r.Sphere.Microseconds()) / 1000}
		}

		bboxLine, err := plotter.NewLine(bboxPts)
		if err != nil {
			return fmt.Errorf("bench: bbox line: %w", err)
		}
		bboxLine.Color = plotutil.Color(i)
		bboxLine.Width = vg.Points(1)
		bboxLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		sphereLine, err := plotter.NewLine(spherePts)
		if err != nil {
			return fmt.Errorf("bench: sphere line: %w", err)
		}
		sphereLine.Color = plotutil.Color(i)
		sphereLine.Width = vg.Points(1.5)

		p.Add(bboxLine, sphereLine)
		label := humanize.Comma(int64(n))
		p.Legend.Add("bbox "+label, bboxLine)
		p.Legend.Add("sphere "+label, sphereLine)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("bench: save chart: %w", err)
	}
	return nil
}
