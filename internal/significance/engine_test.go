package significance

import (
	"errors"
	"math"
	"testing"

	"gridsig/domain/core"
	"gridsig/domain/report"
)

func TestEmpiricalPValue_Greater(t *testing.T) {
	controls := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		observed float64
		want     float64
	}{
		{"above all controls", 10, 1.0 / 6.0},
		{"inside the distribution", 3, 4.0 / 6.0},
		{"below all controls", 0, 1.0},
		{"equal to max", 5, 2.0 / 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := EmpiricalPValue(tt.observed, controls, report.AlternativeGreater)
			if err != nil {
				t.Fatalf("EmpiricalPValue: %v", err)
			}
			if math.Abs(p-tt.want) > 1e-12 {
				t.Errorf("p = %v, want %v", p, tt.want)
			}
		})
	}
}

func TestEmpiricalPValue_Less(t *testing.T) {
	controls := []float64{1, 2, 3, 4, 5}
	p, err := EmpiricalPValue(0, controls, report.AlternativeLess)
	if err != nil {
		t.Fatalf("EmpiricalPValue: %v", err)
	}
	if want := 1.0 / 6.0; math.Abs(p-want) > 1e-12 {
		t.Errorf("p = %v, want %v", p, want)
	}
}

func TestEmpiricalPValue_TwoSided(t *testing.T) {
	controls := []float64{1, 2, 3, 4, 5}

	// observed=10: pGreater=1/6, pLess=1 -> two-sided = 2/6.
	p, err := EmpiricalPValue(10, controls, report.AlternativeTwoSided)
	if err != nil {
		t.Fatalf("EmpiricalPValue: %v", err)
	}
	if want := 2.0 / 6.0; math.Abs(p-want) > 1e-12 {
		t.Errorf("p = %v, want %v", p, want)
	}

	// observed=3 is central: doubling must still cap at 1.0.
	p, err = EmpiricalPValue(3, controls, report.AlternativeTwoSided)
	if err != nil {
		t.Fatalf("EmpiricalPValue: %v", err)
	}
	if p > 1.0 {
		t.Errorf("two-sided p = %v, want <= 1.0", p)
	}
}

// Add-one smoothing bounds p to [1/(n+1), 1]; a finite simulation must never
// report p=0.
func TestEmpiricalPValue_SmoothingBounds(t *testing.T) {
	for _, n := range []int{1, 5, 100} {
		controls := make([]float64, n)
		for i := range controls {
			controls[i] = float64(i)
		}
		p, err := EmpiricalPValue(math.MaxFloat64, controls, report.AlternativeGreater)
		if err != nil {
			t.Fatalf("EmpiricalPValue: %v", err)
		}
		lower := 1.0 / float64(n+1)
		if p < lower || p > 1.0 {
			t.Errorf("n=%d: p = %v outside [%v, 1]", n, p, lower)
		}
		if p != lower {
			t.Errorf("n=%d: extreme observation p = %v, want exactly %v", n, p, lower)
		}
	}
}

// p is monotonically non-decreasing in the number of controls >= observed.
func TestEmpiricalPValue_Monotonic(t *testing.T) {
	observed := 5.0
	prev := 0.0
	for k := 0; k <= 10; k++ {
		controls := make([]float64, 10)
		for i := range controls {
			if i < k {
				controls[i] = observed + 1 // counts as >= observed
			} else {
				controls[i] = observed - 1
			}
		}
		p, err := EmpiricalPValue(observed, controls, report.AlternativeGreater)
		if err != nil {
			t.Fatalf("EmpiricalPValue: %v", err)
		}
		if p < prev {
			t.Errorf("k=%d: p = %v decreased from %v", k, p, prev)
		}
		prev = p
	}
}

// An empty control set yields p=1.0 by convention rather than an error:
// with no data the null cannot be rejected, and callers chaining many tests
// must not be aborted by one degenerate test.
func TestEmpiricalPValue_EmptyControls(t *testing.T) {
	p, err := EmpiricalPValue(42, nil, report.AlternativeGreater)
	if err != nil {
		t.Fatalf("EmpiricalPValue: %v", err)
	}
	if p != 1.0 {
		t.Errorf("p = %v, want 1.0 for empty control set", p)
	}
}

func TestEmpiricalPValue_UnknownAlternative(t *testing.T) {
	_, err := EmpiricalPValue(1, []float64{1}, report.Alternative("sideways"))
	if !errors.Is(err, core.ErrUnknownAlternative) {
		t.Errorf("error = %v, want ErrUnknownAlternative", err)
	}
}

func TestBonferroniThreshold(t *testing.T) {
	got, err := BonferroniThreshold(0.05, 1)
	if err != nil || got != 0.05 {
		t.Errorf("BonferroniThreshold(0.05, 1) = %v, %v; want 0.05, nil", got, err)
	}
	got, err = BonferroniThreshold(0.05, 2)
	if err != nil || got != 0.025 {
		t.Errorf("BonferroniThreshold(0.05, 2) = %v, %v; want 0.025, nil", got, err)
	}
	got, err = BonferroniThreshold(0.05, 10)
	if err != nil || got != 0.005 {
		t.Errorf("BonferroniThreshold(0.05, 10) = %v, %v; want 0.005, nil", got, err)
	}

	if _, err := BonferroniThreshold(0.05, 0); !errors.Is(err, core.ErrInvalidTestCount) {
		t.Errorf("n=0 error = %v, want ErrInvalidTestCount", err)
	}
	if _, err := BonferroniThreshold(0, 3); !errors.Is(err, core.ErrInvalidAlpha) {
		t.Errorf("alpha=0 error = %v, want ErrInvalidAlpha", err)
	}
	if _, err := BonferroniThreshold(1.5, 3); !errors.Is(err, core.ErrInvalidAlpha) {
		t.Errorf("alpha=1.5 error = %v, want ErrInvalidAlpha", err)
	}
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize([]float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Count != 5 || summary.Mean != 3 || summary.Min != 1 || summary.Max != 5 || summary.Median != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	if _, err := Summarize(nil); !errors.Is(err, core.ErrEmptyControlSet) {
		t.Errorf("empty summary error = %v, want ErrEmptyControlSet", err)
	}
}
