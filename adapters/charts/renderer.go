package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ecothread/domain/core"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// Renderer draws static PNG charts into an output directory
type Renderer struct {
	outDir string
}

// NewRenderer creates a chart renderer writing into outDir
func NewRenderer(outDir string) *Renderer {
	return &Renderer{outDir: outDir}
}

// Histogram renders a frequency histogram of a numeric column
func (r *Renderer) Histogram(values []float64, title, xLabel, filename string) (string, error) {
	if len(values) == 0 {
		return "", core.ErrEmptyDataset
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), 16)
	if err != nil {
		return "", fmt.Errorf("building histogram: %w", err)
	}
	p.Add(h)

	return r.save(p, filename)
}

// Bar renders a labeled bar chart (one bar per category)
func (r *Renderer) Bar(labels []string, values []float64, title, yLabel, filename string) (string, error) {
	if len(labels) == 0 || len(labels) != len(values) {
		return "", fmt.Errorf("%w: %d labels for %d values",
			core.ErrLengthMismatch, len(labels), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return "", fmt.Errorf("building bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.9

	return r.save(p, filename)
}

// Scatter renders an x/y scatter plot
func (r *Renderer) Scatter(x, y []float64, title, xLabel, yLabel, filename string) (string, error) {
	if len(x) != len(y) {
		return "", fmt.Errorf("%w: %d x values for %d y values",
			core.ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return "", core.ErrEmptyDataset
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("building scatter: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)

	return r.save(p, filename)
}

func (r *Renderer) save(p *plot.Plot, filename string) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating chart directory: %w", err)
	}
	path := filepath.Join(r.outDir, filename)
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return "", fmt.Errorf("saving chart %s: %w", filename, err)
	}
	return path, nil
}
