package significance

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gridsig/domain/core"
	"gridsig/domain/report"
)

// Report accumulates empirical test records and finalizes them against a
// Bonferroni-corrected threshold. Append-only, single writer; the threshold
// is recomputed on every Finalize so a record never keeps a stale threshold
// from its creation time.
type Report struct {
	title     string
	alpha     float64
	seed      int64
	nControls int
	runID     core.RunID
	createdAt time.Time

	records   []report.TestRecord
	order     []string
	finalized bool
}

// NewReport creates an empty report with run metadata.
func NewReport(title string, alpha float64, seed int64, nControls int) (*Report, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: got %v", core.ErrInvalidAlpha, alpha)
	}
	return &Report{
		title:     title,
		alpha:     alpha,
		seed:      seed,
		nControls: nControls,
		runID:     core.NewRunID(),
		createdAt: time.Now().UTC(),
	}, nil
}

// RunID returns the report's run identifier.
func (r *Report) RunID() core.RunID { return r.runID }

// SetRunID overrides the generated run ID, for replaying archived runs.
func (r *Report) SetRunID(id core.RunID) { r.runID = id }

// NumTests returns the number of accumulated tests.
func (r *Report) NumTests() int { return len(r.records) }

// AddTest computes the raw empirical p-value for one test and appends its
// record. The Bonferroni threshold and verdict are deferred to Finalize,
// since the threshold depends on the total count of accumulated tests.
// Adding a test after Finalize is allowed; it simply requires another
// Finalize before the report is rendered or saved.
func (r *Report) AddTest(name, nullHypothesis string, observed float64, controls []float64, alternative report.Alternative, unit string) error {
	if name == "" {
		return fmt.Errorf("test name cannot be empty")
	}
	p, err := EmpiricalPValue(observed, controls, alternative)
	if err != nil {
		return err
	}

	summary, err := Summarize(controls)
	if err != nil && !errors.Is(err, core.ErrEmptyControlSet) {
		return err
	}
	z, approxP := normalApprox(observed, summary, alternative)

	r.records = append(r.records, report.TestRecord{
		Name:           name,
		NullHypothesis: nullHypothesis,
		Observed:       observed,
		Controls:       summary,
		PValue:         p,
		Alternative:    alternative,
		Unit:           unit,
		ZScore:         z,
		NormalApproxP:  approxP,
	})
	r.order = append(r.order, name)
	r.finalized = false
	return nil
}

// Finalize recomputes every record's threshold and verdict against the
// current test count. Idempotent; safe to call again after more tests are
// added.
func (r *Report) Finalize() error {
	threshold, err := BonferroniThreshold(r.alpha, len(r.records))
	if err != nil {
		return err
	}
	for i := range r.records {
		r.records[i].Threshold = threshold
		r.records[i].Significant = r.records[i].PValue < threshold
	}
	r.finalized = true
	return nil
}

// Document builds the persisted report form. Finalize must have run since
// the last AddTest.
func (r *Report) Document() (report.Document, error) {
	if !r.finalized {
		return report.Document{}, fmt.Errorf("report %q has unfinalized tests", r.title)
	}
	threshold, err := BonferroniThreshold(r.alpha, len(r.records))
	if err != nil {
		return report.Document{}, err
	}

	tests := make(map[string]report.TestRecord, len(r.records))
	for _, rec := range r.records {
		tests[rec.Name] = rec
	}
	order := make([]string, len(r.order))
	copy(order, r.order)

	return report.Document{
		Title:               r.title,
		Timestamp:           r.createdAt,
		RunID:               r.runID,
		NControls:           r.nControls,
		Seed:                r.seed,
		Alpha:               r.alpha,
		NTests:              len(r.records),
		BonferroniThreshold: threshold,
		Tests:               tests,
		Order:               order,
	}, nil
}

// Render writes the deterministic human-readable summary.
func (r *Report) Render(w io.Writer) error {
	if err := r.Finalize(); err != nil {
		return err
	}
	doc, err := r.Document()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== %s ===\n", doc.Title)
	fmt.Fprintf(w, "run %s | controls=%d seed=%d alpha=%g\n", doc.RunID, doc.NControls, doc.Seed, doc.Alpha)
	fmt.Fprintf(w, "tests=%d bonferroni threshold=%.6g\n\n", doc.NTests, doc.BonferroniThreshold)

	significant := 0
	for _, name := range doc.Order {
		rec := doc.Tests[name]
		verdict := "FAIL"
		if rec.Significant {
			verdict = "PASS"
			significant++
		}
		fmt.Fprintf(w, "[%s] %s\n", verdict, rec.Name)
		fmt.Fprintf(w, "  H0: %s\n", rec.NullHypothesis)
		fmt.Fprintf(w, "  observed=%.6g %s (%s)\n", rec.Observed, rec.Unit, rec.Alternative)
		fmt.Fprintf(w, "  controls: n=%d mean=%.6g sd=%.6g min=%.6g max=%.6g p95=%.6g\n",
			rec.Controls.Count, rec.Controls.Mean, rec.Controls.StdDev,
			rec.Controls.Min, rec.Controls.Max, rec.Controls.P95)
		fmt.Fprintf(w, "  p=%.6g (z=%.3f, normal approx p=%.6g) threshold=%.6g\n\n",
			rec.PValue, rec.ZScore, rec.NormalApproxP, rec.Threshold)
	}
	fmt.Fprintf(w, "%d of %d tests significant at corrected threshold\n", significant, doc.NTests)
	return nil
}

// Markdown renders the report as a markdown document, the source for the
// HTML export.
func (r *Report) Markdown() (string, error) {
	if err := r.Finalize(); err != nil {
		return "", err
	}
	doc, err := r.Document()
	if err != nil {
		return "", err
	}
	return doc.Markdown(), nil
}

// SaveJSON persists the fully finalized report as structured JSON, the
// stable contract for downstream tooling.
func (r *Report) SaveJSON(path string) error {
	if err := r.Finalize(); err != nil {
		return err
	}
	doc, err := r.Document()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
