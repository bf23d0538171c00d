package significance

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gridsig/domain/core"
	"gridsig/domain/report"
)

func mustReport(t *testing.T) *Report {
	t.Helper()
	r, err := NewReport("test report", 0.05, 42, 100)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	return r
}

// Adding a second test must change the first test's Bonferroni threshold on
// the next Finalize; thresholds are never locked in at creation time.
func TestReport_ThresholdRecomputed(t *testing.T) {
	r := mustReport(t)
	controls := []float64{1, 2, 3, 4, 5}

	if err := r.AddTest("first", "no effect", 10, controls, report.AlternativeGreater, "units"); err != nil {
		t.Fatalf("AddTest: %v", err)
	}
	if err := r.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got := doc.Tests["first"].Threshold; got != 0.05 {
		t.Errorf("threshold with 1 test = %v, want 0.05", got)
	}

	if err := r.AddTest("second", "no effect either", 10, controls, report.AlternativeGreater, "units"); err != nil {
		t.Fatalf("AddTest: %v", err)
	}
	if err := r.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	doc, err = r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got := doc.Tests["first"].Threshold; got != 0.025 {
		t.Errorf("threshold after second test = %v, want 0.025", got)
	}
	if got := doc.Tests["second"].Threshold; got != 0.025 {
		t.Errorf("second test threshold = %v, want 0.025", got)
	}
}

func TestReport_FinalizeIdempotent(t *testing.T) {
	r := mustReport(t)
	if err := r.AddTest("only", "h0", 10, []float64{1, 2, 3}, report.AlternativeGreater, ""); err != nil {
		t.Fatalf("AddTest: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := r.Finalize(); err != nil {
			t.Fatalf("Finalize call %d: %v", i, err)
		}
	}
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Tests["only"].Threshold != 0.05 {
		t.Errorf("threshold = %v, want 0.05", doc.Tests["only"].Threshold)
	}
}

func TestReport_FinalizeEmptyFails(t *testing.T) {
	r := mustReport(t)
	if err := r.Finalize(); !errors.Is(err, core.ErrInvalidTestCount) {
		t.Errorf("Finalize() = %v, want ErrInvalidTestCount", err)
	}
}

func TestReport_DocumentRequiresFinalize(t *testing.T) {
	r := mustReport(t)
	if err := r.AddTest("only", "h0", 1, []float64{1}, report.AlternativeGreater, ""); err != nil {
		t.Fatalf("AddTest: %v", err)
	}
	if _, err := r.Document(); err == nil {
		t.Error("Document() before Finalize succeeded, want error")
	}
}

func TestReport_EmptyControlsRecorded(t *testing.T) {
	r := mustReport(t)
	if err := r.AddTest("degenerate", "no data", 5, nil, report.AlternativeGreater, ""); err != nil {
		t.Fatalf("AddTest with empty controls: %v", err)
	}
	if err := r.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	rec := doc.Tests["degenerate"]
	if rec.PValue != 1.0 {
		t.Errorf("p = %v, want 1.0 for empty controls", rec.PValue)
	}
	if rec.Controls.Count != 0 {
		t.Errorf("control count = %d, want 0", rec.Controls.Count)
	}
	if rec.Significant {
		t.Error("degenerate test marked significant")
	}
}

func TestReport_SaveJSONRoundTrip(t *testing.T) {
	r := mustReport(t)
	if err := r.AddTest("resonance", "score matches random streams", 9.5,
		[]float64{1, 2, 3, 4, 5}, report.AlternativeGreater, "weighted symbols"); err != nil {
		t.Fatalf("AddTest: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := r.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc report.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if doc.Title != "test report" || doc.Alpha != 0.05 || doc.Seed != 42 || doc.NControls != 100 {
		t.Errorf("metadata mismatch: %+v", doc)
	}
	if doc.NTests != 1 || doc.BonferroniThreshold != 0.05 {
		t.Errorf("test count/threshold mismatch: n=%d threshold=%v", doc.NTests, doc.BonferroniThreshold)
	}
	rec, ok := doc.Tests["resonance"]
	if !ok {
		t.Fatal("persisted document missing test record")
	}
	if rec.Observed != 9.5 || rec.Alternative != report.AlternativeGreater || rec.Unit != "weighted symbols" {
		t.Errorf("record mismatch: %+v", rec)
	}
	if doc.RunID.String() == "" {
		t.Error("persisted document missing run ID")
	}
}

func TestReport_RenderDeterministic(t *testing.T) {
	build := func() string {
		r := mustReport(t)
		r.SetRunID(core.RunID("fixed-run-id"))
		_ = r.AddTest("alpha", "h0 a", 10, []float64{1, 2, 3}, report.AlternativeGreater, "u")
		_ = r.AddTest("beta", "h0 b", 2, []float64{1, 2, 3}, report.AlternativeGreater, "u")
		var buf bytes.Buffer
		if err := r.Render(&buf); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return buf.String()
	}

	first := build()
	second := build()
	// Timestamps differ; everything rendered is identical apart from them,
	// and Render itself does not print the timestamp.
	if first != second {
		t.Errorf("render output not deterministic:\n%s\n---\n%s", first, second)
	}
	if !bytes.Contains([]byte(first), []byte("[FAIL] beta")) {
		t.Errorf("expected beta to fail at corrected threshold, got:\n%s", first)
	}
}
