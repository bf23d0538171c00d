// Package report defines the serialized significance-report contract consumed
// by archival and visualization tooling.
package report

import (
	"fmt"
	"time"

	"gridsig/domain/core"
)

// Alternative names the direction of an empirical test.
type Alternative string

const (
	AlternativeGreater  Alternative = "greater"
	AlternativeLess     Alternative = "less"
	AlternativeTwoSided Alternative = "two-sided"
)

// Valid reports whether the alternative is one of the three known directions.
func (a Alternative) Valid() bool {
	switch a {
	case AlternativeGreater, AlternativeLess, AlternativeTwoSided:
		return true
	}
	return false
}

// DistributionSummary condenses a control distribution for reporting.
type DistributionSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// TestRecord is one finalized empirical test. Records are created by AddTest,
// frozen by Finalize, and immutable thereafter.
type TestRecord struct {
	Name           string              `json:"name"`
	NullHypothesis string              `json:"null_hypothesis"`
	Observed       float64             `json:"observed"`
	Controls       DistributionSummary `json:"controls"`
	PValue         float64             `json:"p_value"`
	Alternative    Alternative         `json:"alternative"`
	Unit           string              `json:"unit"`

	// ZScore and NormalApproxP are a normal-approximation cross-check of the
	// empirical p, not the decision statistic.
	ZScore        float64 `json:"z_score"`
	NormalApproxP float64 `json:"normal_approx_p"`

	// Threshold and Significant are set by Finalize against the test count
	// at finalization time, never against a stale count.
	Threshold   float64 `json:"threshold"`
	Significant bool    `json:"significant"`
}

// Document is the persisted report format, the stable contract for
// downstream visualization and archival tooling.
type Document struct {
	Title               string                `json:"title"`
	Timestamp           time.Time             `json:"timestamp"`
	RunID               core.RunID            `json:"run_id"`
	NControls           int                   `json:"n_controls"`
	Seed                int64                 `json:"seed"`
	Alpha               float64               `json:"alpha"`
	NTests              int                   `json:"n_tests"`
	BonferroniThreshold float64               `json:"bonferroni_threshold"`
	Tests               map[string]TestRecord `json:"tests"`

	// Order preserves insertion order for deterministic rendering; the Tests
	// map is keyed by name for tooling convenience.
	Order []string `json:"order"`
}

// Markdown renders the document as a markdown summary, the source for HTML
// export. Rendering follows insertion order, so identical documents produce
// identical text.
func (d Document) Markdown() string {
	out := fmt.Sprintf("# %s\n\n", d.Title)
	out += fmt.Sprintf("Run `%s`: %d controls, seed %d, alpha %g, Bonferroni threshold %.6g across %d tests.\n\n",
		d.RunID, d.NControls, d.Seed, d.Alpha, d.BonferroniThreshold, d.NTests)
	out += "| Test | Observed | Control mean | p | Threshold | Verdict |\n"
	out += "|------|----------|--------------|---|-----------|--------|\n"
	for _, name := range d.Order {
		rec := d.Tests[name]
		verdict := "not significant"
		if rec.Significant {
			verdict = "**significant**"
		}
		out += fmt.Sprintf("| %s | %.6g %s | %.6g | %.6g | %.6g | %s |\n",
			rec.Name, rec.Observed, rec.Unit, rec.Controls.Mean, rec.PValue, rec.Threshold, verdict)
	}
	out += fmt.Sprintf("\n%d of %d tests significant.\n", d.SignificantCount(), d.NTests)
	return out
}

// SignificantCount returns how many finalized tests passed their threshold.
func (d Document) SignificantCount() int {
	n := 0
	for _, rec := range d.Tests {
		if rec.Significant {
			n++
		}
	}
	return n
}
