// Package chart renders recovery series as PNG trend charts.
package chart

import (
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Renderer draws trend charts at a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a Renderer for width x height pixel images.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

type threshold struct {
	value float64
	label string
	color drawing.Color
}

var thresholds = []threshold{
	{value: domain.IncreaseThreshold, label: "safe to load", color: chart.ColorGreen},
	{value: domain.MaintainThreshold, label: "light load", color: chart.ColorRed},
}

// RenderTrend writes series as a PNG line chart with dashed threshold lines
// at the load tiers. An empty series returns ErrInsufficientData.
func (r *Renderer) RenderTrend(w io.Writer, title string, series []domain.RecoveryReading) error {
	if len(series) == 0 {
		return fmt.Errorf("render trend: %w", domain.ErrInsufficientData)
	}
	sorted := domain.SortByDate(series)

	xs := make([]time.Time, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i] = p.Date
		ys[i] = p.Value
	}
	first, last := xs[0], xs[len(xs)-1]
	// go-chart needs two distinct x values to compute a range.
	if !last.After(first) {
		last = first.AddDate(0, 0, 1)
	}

	all := []chart.Series{
		chart.TimeSeries{
			Name:    "ANS score",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 2,
				DotWidth:    4,
				DotColor:    chart.ColorBlue,
			},
		},
	}

	annotations := make([]chart.Value2, 0, len(thresholds))
	for _, t := range thresholds {
		all = append(all, chart.TimeSeries{
			Name:    fmt.Sprintf("%.0f %s", t.value, t.label),
			XValues: []time.Time{first, last},
			YValues: []float64{t.value, t.value},
			Style: chart.Style{
				StrokeColor:     t.color,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		})
		annotations = append(annotations, chart.Value2{
			XValue: chart.TimeToFloat64(last),
			YValue: t.value,
			Label:  t.label,
		})
	}
	all = append(all, chart.AnnotationSeries{Annotations: annotations})

	lo, hi := yRange(ys)
	ch := chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: all,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend: %w", err)
	}
	return nil
}

// yRange keeps 0..100 visible and widens by 5 around out-of-range values.
func yRange(ys []float64) (float64, float64) {
	lo, hi := 0.0, 100.0
	for _, y := range ys {
		lo = min(lo, y-5)
		hi = max(hi, y+5)
	}
	return lo, hi
}
