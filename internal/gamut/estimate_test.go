package gamut

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jsvensson/okgamut/internal/color"
)

func cuspTable(t *testing.T, resolution int) *CuspTable {
	t.Helper()
	table, err := ExtractCusps(Grid{Resolution: resolution}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestEstimateError_Deterministic(t *testing.T) {
	table := cuspTable(t, 24)

	first, err := EstimateError(table, 50000, 42, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{1, 4, 0} {
		got, err := EstimateError(table, 50000, 42, workers)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Errorf("workers=%d: %+v, want %+v", workers, got, first)
		}
	}
}

func TestEstimateError_Plausible(t *testing.T) {
	e, err := EstimateError(cuspTable(t, 48), 40000, DefaultSeed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if e.Samples != 40000 || e.Seed != DefaultSeed {
		t.Errorf("Estimate = %+v", e)
	}
	if f := e.Fraction(); f <= 0 || f >= 0.2 {
		t.Errorf("Fraction() = %f, want a small positive over-coverage", f)
	}
}

func TestEstimateError_Invalid(t *testing.T) {
	empty, _ := NewCuspTable(nil)
	if _, err := EstimateError(empty, 10, 1, 0); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("empty table error = %v, want ErrEmptyTable", err)
	}
	if _, err := EstimateError(cuspTable(t, 4), 0, 1, 0); err == nil {
		t.Error("expected error for zero samples")
	}
}

func TestDrawInTriangle_StaysInTriangle(t *testing.T) {
	table := cuspTable(t, 16)
	cusps := table.dense()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10000; i++ {
		p := drawInTriangle(rng, &cusps)
		cusp := cusps[HueBucket(p.H)]
		if p.C < 0 || p.C > cusp.C+1e-9 {
			t.Fatalf("draw %+v: chroma outside [0, %f]", p, cusp.C)
		}
		if p.C > 1e-9 {
			lower, upper := Band(cusp, p.C)
			if p.L < lower-1e-9 || p.L > upper+1e-9 {
				t.Fatalf("draw %+v: lightness outside band [%f, %f]", p, lower, upper)
			}
		}
	}
}

func TestInGamut(t *testing.T) {
	red := color.Oklch{L: 62.7955, C: 25.7683, H: 29.2339}
	if !InGamut(red) {
		t.Error("pure red should be in gamut")
	}
	if InGamut(color.Oklch{L: 50, C: 40, H: 150}) {
		t.Error("L=50 C=40 H=150 should be out of gamut")
	}
	if !InGamut(color.Oklch{L: 50, C: 0, H: 0}) {
		t.Error("mid gray should be in gamut")
	}
}

func TestEstimate_FractionZeroSamples(t *testing.T) {
	if got := (Estimate{}).Fraction(); got != 0 {
		t.Errorf("Fraction() = %f, want 0", got)
	}
}
