package regression

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrSeriesLenMismatch = errors.New("plot series have different lengths")

// Series is the data of a single input scatter plot: the observed input and target values of the
// table snapshot and the fitted value at each input
type Series struct {
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Predicted []float64 `json:"predicted"`
}

// PlotSeries returns the plot data of a bundle. A plot is only available when the bundle has
// exactly one input column; otherwise ok is false.
func PlotSeries(b *Bundle) (Series, bool) {
	if b == nil || b.Table == nil || len(b.Selection.Inputs) != 1 || len(b.Coefficients) != 1 {
		return Series{}, false
	}
	xc, err := b.Table.Column(b.Selection.Inputs[0])
	if err != nil {
		return Series{}, false
	}
	yc, err := b.Table.Column(b.Selection.Target)
	if err != nil {
		return Series{}, false
	}

	s := Series{
		X:         xc.Float64s(),
		Y:         yc.Float64s(),
		Predicted: make([]float64, len(xc.Values)),
	}
	for i, x := range s.X {
		s.Predicted[i] = b.Intercept + b.Coefficients[0]*x
	}
	return s, true
}

// ScatterFit builds a scatter chart of the observed values overlapped with the fitted line
func ScatterFit(b *Bundle, s Series) (*charts.Scatter, error) {
	if len(s.X) != len(s.Y) || len(s.X) != len(s.Predicted) {
		return nil, fmt.Errorf("x %d, y %d, predicted %d, %w", len(s.X), len(s.Y), len(s.Predicted), ErrSeriesLenMismatch)
	}
	xName, yName := "x", "y"
	title := "Linear Regression"
	if b != nil {
		if len(b.Selection.Inputs) > 0 {
			xName = b.Selection.Inputs[0]
		}
		yName = b.Selection.Target
		title = b.Formula
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName}),
	)

	points := make([]opts.ScatterData, 0, len(s.X))
	for i := range s.X {
		points = append(points, opts.ScatterData{Value: []interface{}{s.X[i], s.Y[i]}})
	}
	scatter.AddSeries("Actual", points)

	// draw the fit left to right
	order := make([]int, len(s.X))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return s.X[order[i]] < s.X[order[j]] })

	fit := make([]opts.LineData, 0, len(order))
	for _, i := range order {
		fit = append(fit, opts.LineData{Value: []interface{}{s.X[i], s.Predicted[i]}})
	}
	line := charts.NewLine()
	line.AddSeries("Regression", fit)
	scatter.Overlap(line)
	return scatter, nil
}

// PlotFit renders the scatter and fitted line of a single input bundle as an html page
func PlotFit(w io.Writer, b *Bundle, s Series) error {
	scatter, err := ScatterFit(b, s)
	if err != nil {
		return err
	}
	page := components.NewPage()
	page.AddCharts(scatter)
	return page.Render(w)
}
