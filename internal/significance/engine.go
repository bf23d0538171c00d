// Package significance converts observed statistics and control distributions
// into calibrated empirical p-values with multiple-testing correction.
package significance

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gridsig/domain/core"
	"gridsig/domain/report"
)

// EmpiricalPValue computes an add-one-smoothed empirical p-value. The
// smoothing guarantees p in [1/(n+1), 1] and never reports p=0 from a finite
// simulation.
//
// An empty control set is not an error here: the function returns p=1.0, the
// documented "cannot reject the null with no data" convention, so callers
// chaining many tests are not aborted by one degenerate test.
func EmpiricalPValue(observed float64, controls []float64, alternative report.Alternative) (float64, error) {
	if !alternative.Valid() {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownAlternative, alternative)
	}
	n := len(controls)
	if n == 0 {
		return 1.0, nil
	}

	atLeast, atMost := 0, 0
	for _, c := range controls {
		if c >= observed {
			atLeast++
		}
		if c <= observed {
			atMost++
		}
	}
	pGreater := float64(atLeast+1) / float64(n+1)
	pLess := float64(atMost+1) / float64(n+1)

	switch alternative {
	case report.AlternativeGreater:
		return pGreater, nil
	case report.AlternativeLess:
		return pLess, nil
	default: // two-sided
		return math.Min(2*math.Min(pGreater, pLess), 1.0), nil
	}
}

// BonferroniThreshold divides alpha by the number of simultaneous tests to
// control the family-wise error rate. A zero test count has no sensible
// threshold and is fatal.
func BonferroniThreshold(alpha float64, nTests int) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("%w: got %v", core.ErrInvalidAlpha, alpha)
	}
	if nTests < 1 {
		return 0, fmt.Errorf("%w: got %d", core.ErrInvalidTestCount, nTests)
	}
	return alpha / float64(nTests), nil
}

// Summarize condenses a control distribution for reporting. Unlike
// EmpiricalPValue, it surfaces ErrEmptyControlSet so callers can record an
// explicitly empty summary instead of fabricated zeros.
func Summarize(controls []float64) (report.DistributionSummary, error) {
	if len(controls) == 0 {
		return report.DistributionSummary{}, core.ErrEmptyControlSet
	}

	mean, err := stats.Mean(controls)
	if err != nil {
		return report.DistributionSummary{}, err
	}
	stdDev, err := stats.StandardDeviation(controls)
	if err != nil {
		return report.DistributionSummary{}, err
	}
	min, err := stats.Min(controls)
	if err != nil {
		return report.DistributionSummary{}, err
	}
	max, err := stats.Max(controls)
	if err != nil {
		return report.DistributionSummary{}, err
	}
	median, err := stats.Median(controls)
	if err != nil {
		return report.DistributionSummary{}, err
	}
	p5, _ := stats.Percentile(controls, 5)
	p95, _ := stats.Percentile(controls, 95)
	p99, _ := stats.Percentile(controls, 99)

	return report.DistributionSummary{
		Count:  len(controls),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		P5:     p5,
		P95:    p95,
		P99:    p99,
	}, nil
}

// normalApprox cross-checks the empirical p with a z-score against a normal
// fit of the controls. Reported alongside the empirical value, never used
// for the verdict.
func normalApprox(observed float64, summary report.DistributionSummary, alternative report.Alternative) (z, p float64) {
	if summary.Count == 0 || summary.StdDev == 0 {
		return 0, 1.0
	}
	z = (observed - summary.Mean) / summary.StdDev
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	switch alternative {
	case report.AlternativeGreater:
		p = 1 - norm.CDF(z)
	case report.AlternativeLess:
		p = norm.CDF(z)
	default:
		p = 2 * (1 - norm.CDF(math.Abs(z)))
	}
	return z, math.Min(math.Max(p, 0), 1)
}
