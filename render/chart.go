package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/theapemachine/qsim/circuit"
)

func toBarItems(vals []float64) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func labels(res *circuit.CircuitResult) []string {
	out := make([]string, len(res.Basis))
	for i, b := range res.Basis {
		out[i] = "|" + b + "⟩"
	}
	return out
}

// ProbabilityChart is a bar chart of the final basis-state probabilities.
func ProbabilityChart(title string, res *circuit.CircuitResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d qubits, %d operations", len(res.Qubits), len(res.Steps)),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "probability", Min: 0, Max: 1}),
	)

	bar.SetXAxis(labels(res)).
		AddSeries("probability", toBarItems(res.Probabilities)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	return bar
}

// CountsChart plots sampled measurement counts; nil when nothing was sampled.
func CountsChart(title string, res *circuit.CircuitResult) *charts.Bar {
	if len(res.Counts) == 0 {
		return nil
	}

	counts := make([]float64, len(res.Basis))
	for i, b := range res.Basis {
		counts[i] = float64(res.Counts[b])
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title + " (sampled)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels(res)).AddSeries("count", toBarItems(counts))

	return bar
}

// WriteChart renders a page holding the probability chart and, if the run
// was sampled, the counts chart.
func WriteChart(w io.Writer, title string, res *circuit.CircuitResult) error {
	page := components.NewPage()
	page.AddCharts(ProbabilityChart(title, res))

	if counts := CountsChart(title, res); counts != nil {
		page.AddCharts(counts)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
