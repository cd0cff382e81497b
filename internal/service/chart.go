package service

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/model"
)

const (
	chartWidth  = 9 * vg.Inch
	chartHeight = 4.5 * vg.Inch
	msPerDay    = 24 * 60 * 60 * 1000
)

var (
	chartBlue  = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	chartGreen = color.RGBA{R: 22, G: 163, B: 74, A: 255}
)

// ChartRenderer draws trend series as SVG line charts
type ChartRenderer struct{}

// NewChartRenderer creates a new ChartRenderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// chartSeries holds the plotted coordinates of a trend series. X is the
// point index, Y is days since the epoch.
type chartSeries struct {
	Lines   []plotter.XYs
	Current plotter.XYs
}

func buildChartSeries(points []model.TrendPoint) chartSeries {
	var cs chartSeries
	for _, seg := range bulletin.Segments(points) {
		pts := make(plotter.XYs, len(seg.Points))
		for i, pt := range seg.Points {
			pts[i] = plotter.XY{X: float64(seg.Start + i), Y: float64(*pt.TimeValue) / msPerDay}
		}
		cs.Lines = append(cs.Lines, pts)
	}
	for i, pt := range points {
		if pt.Marker == model.MarkerCurrent && pt.TimeValue != nil {
			cs.Current = append(cs.Current, plotter.XY{X: float64(i), Y: float64(*pt.TimeValue) / msPerDay})
		}
	}
	return cs
}

// yRange returns the smallest and largest Y across the series
func (cs chartSeries) yRange() (minY, maxY float64, ok bool) {
	minY, maxY = math.Inf(1), math.Inf(-1)
	observe := func(xys plotter.XYs) {
		for _, xy := range xys {
			minY = math.Min(minY, xy.Y)
			maxY = math.Max(maxY, xy.Y)
		}
	}
	for _, line := range cs.Lines {
		observe(line)
	}
	observe(cs.Current)
	return minY, maxY, !math.IsInf(minY, 1)
}

// RenderSVG writes an SVG chart of points to w. Each run of consecutive
// dated points is its own line; current months are standalone markers and
// months without a value are gaps.
func (r *ChartRenderer) RenderSVG(w io.Writer, title string, points []model.TrendPoint) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	cs := buildChartSeries(points)
	for _, pts := range cs.Lines {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line: %w", err)
		}
		line.Color = chartBlue
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build markers: %w", err)
		}
		scatter.Color = chartBlue
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}

		p.Add(line, scatter)
	}
	if len(cs.Current) > 0 {
		scatter, err := plotter.NewScatter(cs.Current)
		if err != nil {
			return fmt.Errorf("failed to build markers: %w", err)
		}
		scatter.Color = chartGreen
		scatter.Radius = vg.Points(4)
		scatter.Shape = draw.TriangleGlyph{}
		p.Add(scatter)
	}

	labels := make([]string, len(points))
	for i, pt := range points {
		labels[i] = shortMonth(pt.BulletinMonth)
	}
	p.X.Tick.Marker = monthTicks(labels)
	p.X.Min = -0.5
	p.X.Max = math.Max(float64(len(points))-0.5, 0.5)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	minY, maxY, ok := cs.yRange()
	if !ok {
		minY, maxY = 0, 1
	}
	pad := (maxY - minY) * 0.1
	if pad == 0 {
		pad = 30
	}
	p.Y.Min = minY - pad
	p.Y.Max = maxY + pad
	p.Y.Tick.Marker = dateTicks{}

	wt, err := p.WriterTo(chartWidth, chartHeight, "svg")
	if err != nil {
		return fmt.Errorf("failed to create svg canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

// shortMonth renders a bulletin month as 2024-01. The chart fonts carry no
// CJK glyphs, so FormatMonth's labels are not used here.
func shortMonth(month string) string {
	t, ok := bulletin.ParseDate(&month)
	if !ok {
		return month
	}
	return t.Format("2006-01")
}

type monthTicks []string

func (mt monthTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	n := len(mt)
	if n == 0 {
		return ticks
	}

	step := 1
	if n > 12 {
		step = (n + 11) / 12
	}

	for i := 0; i < n; i++ {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = mt[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// dateTicks labels a days-since-epoch axis with calendar dates
type dateTicks struct{}

func (dateTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = time.UnixMilli(int64(ticks[i].Value * msPerDay)).UTC().Format("2006-01-02")
		}
	}
	return ticks
}

// ChartTitle is the ASCII title used on rendered charts
func ChartTitle(q model.TrendQuery) string {
	return fmt.Sprintf("%s %s Table %s (%d months)", q.CategoryCode, q.RegionCode, q.TableType, q.Months)
}
