// Package viz renders control distributions and report summaries to HTML for
// human inspection. Nothing in the analytical core depends on it.
package viz

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"gridsig/internal/errors"
)

const histogramBins = 30

// WriteHistogram renders the control distribution as a binned bar chart with
// the observed statistic marked in the subtitle, written as a standalone
// HTML page.
func WriteHistogram(path, title string, controls []float64, observed float64) error {
	if len(controls) == 0 {
		return errors.InvalidInput("cannot render histogram of empty control set")
	}

	labels, counts := bin(controls, histogramBins)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("null distribution, n=%d, observed=%.6g", len(controls), observed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "control statistic"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("controls", data)

	f, err := os.Create(path)
	if err != nil {
		return errors.IOError("failed to create histogram file", err)
	}
	defer f.Close()
	if err := bar.Render(f); err != nil {
		return errors.IOError("failed to render histogram", err)
	}
	return nil
}

// bin assigns values to equal-width bins and returns the bin labels and
// counts. A constant distribution collapses into a single bin.
func bin(values []float64, bins int) ([]string, []int) {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return []string{fmt.Sprintf("%.4g", min)}, []int{len(values)}
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int(math.Floor((v - min) / width))
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.4g", min+(float64(i)+0.5)*width)
	}
	return labels, counts
}
