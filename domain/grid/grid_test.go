package grid

import (
	"errors"
	"testing"

	"gridsig/domain/core"
)

func TestNew_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		cells [][]int8
	}{
		{"empty", nil},
		{"odd dimension", [][]int8{{0}}},
		{"ragged", [][]int8{{0, 1}, {0}}},
		{"non-square", [][]int8{{0, 1, 2}, {3, 4, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cells); !errors.Is(err, core.ErrInvalidGridSize) {
				t.Errorf("New(%s) error = %v, want ErrInvalidGridSize", tt.name, err)
			}
		})
	}
}

func TestFromInts(t *testing.T) {
	g, err := FromInts([][]int{{-128, 127}, {0, -1}})
	if err != nil {
		t.Fatalf("FromInts: %v", err)
	}
	if g.Size() != 2 {
		t.Errorf("Size() = %d, want 2", g.Size())
	}
	if g.At(0, 0) != -128 || g.At(0, 1) != 127 || g.At(1, 1) != -1 {
		t.Errorf("unexpected cell values: %d %d %d", g.At(0, 0), g.At(0, 1), g.At(1, 1))
	}

	if _, err := FromInts([][]int{{0, 128}, {0, 0}}); !errors.Is(err, core.ErrInvalidCoordinate) {
		t.Errorf("FromInts with 128 error = %v, want ErrInvalidCoordinate", err)
	}
	if _, err := FromInts([][]int{{0, -129}, {0, 0}}); !errors.Is(err, core.ErrInvalidCoordinate) {
		t.Errorf("FromInts with -129 error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestGrid_Flatten(t *testing.T) {
	g, err := FromInts([][]int{{0, 1}, {-1, 127}})
	if err != nil {
		t.Fatalf("FromInts: %v", err)
	}
	got := g.Flatten()
	want := []byte{0, 1, 255, 127}
	if len(got) != len(want) {
		t.Fatalf("Flatten() length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Flatten()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRegion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{"full", FullRegion(8), false},
		{"interior", Region{1, 3, 2, 5}, false},
		{"single cell", Region{0, 1, 0, 1}, false},
		{"empty rows", Region{3, 3, 0, 8}, true},
		{"inverted cols", Region{0, 8, 5, 2}, true},
		{"row end past grid", Region{0, 9, 0, 8}, true},
		{"negative start", Region{-1, 8, 0, 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate(8)
			if tt.wantErr && !errors.Is(err, core.ErrDegenerateRegion) {
				t.Errorf("Validate() = %v, want ErrDegenerateRegion", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestRegion_CellCount(t *testing.T) {
	if got := FullRegion(128).CellCount(); got != 128*128 {
		t.Errorf("full region cell count = %d, want %d", got, 128*128)
	}
	if got := (Region{2, 4, 3, 8}).CellCount(); got != 10 {
		t.Errorf("CellCount() = %d, want 10", got)
	}
	if got := (Region{4, 4, 0, 8}).CellCount(); got != 0 {
		t.Errorf("empty region cell count = %d, want 0", got)
	}
}
