package gamut

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsvensson/okgamut/internal/color"
)

func TestBand(t *testing.T) {
	cusp := Cusp{LRaw: 60, C: 20}

	tests := []struct {
		name      string
		cusp      Cusp
		c         float64
		wantLower float64
		wantUpper float64
	}{
		{"gray axis", cusp, 0, 0, 100},
		{"half way", cusp, 10, 30, 80},
		{"at cusp", cusp, 20, 60, 60},
		{"zero chroma cusp", Cusp{LRaw: 50, C: 0}, 0, 0, 100},
		{"zero chroma cusp, chromatic color", Cusp{LRaw: 50, C: 0}, 5, 100, 0},
		{"past cusp chroma", cusp, 40, 120, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := Band(tt.cusp, tt.c)
			if math.Abs(lower-tt.wantLower) > 1e-9 || math.Abs(upper-tt.wantUpper) > 1e-9 {
				t.Errorf("Band = [%f, %f], want [%f, %f]", lower, upper, tt.wantLower, tt.wantUpper)
			}
		})
	}
}

func TestChromaCeiling(t *testing.T) {
	tests := []struct {
		name string
		cusp Cusp
		l    float64
		want float64
	}{
		{"below cusp", Cusp{LRaw: 60, C: 20}, 30, 10},
		{"above cusp", Cusp{LRaw: 60, C: 20}, 80, 10},
		{"at cusp", Cusp{LRaw: 60, C: 20}, 60, 20},
		{"black", Cusp{LRaw: 60, C: 20}, 0, 0},
		{"white", Cusp{LRaw: 60, C: 20}, 100, 0},
		{"cusp at black", Cusp{LRaw: 0, C: 20}, 0, 0},
		{"cusp at white", Cusp{LRaw: 100, C: 20}, 100.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChromaCeiling(tt.cusp, tt.l)
			if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ChromaCeiling = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNewModel_Empty(t *testing.T) {
	empty, _ := NewCuspTable(nil)
	if _, err := NewModel(empty); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("NewModel(empty) error = %v, want ErrEmptyTable", err)
	}
}

func TestClassify_CuspIsInside(t *testing.T) {
	g := Grid{Resolution: 16}
	table := CuspsFromSamples(g.Samples())
	m, err := NewModel(table)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range table.All() {
		v := m.Classify(g.Sample(c.Index))
		if v.Outside() {
			t.Errorf("cusp of bucket %d classified outside: %+v", c.HueFloor, v)
		}
		if v.Excess != 0 {
			t.Errorf("cusp of bucket %d has excess %f", c.HueFloor, v.Excess)
		}
	}
}

func TestClassify_OutsideBelow(t *testing.T) {
	table, err := NewCuspTable([]Cusp{{HueFloor: 29, LRaw: 62.8, C: 25.77, H: 29.23}})
	if err != nil {
		t.Fatal(err)
	}
	m, _ := NewModel(table)

	// Dark and saturated: far below the black-to-cusp segment.
	s := Sample{Index: 7, LRaw: 10, C: 20, H: 29.5}
	v := m.Classify(s)
	if !v.Outside() {
		t.Fatalf("expected outside, got %+v", v)
	}

	lower, _ := Band(table.All()[0], s.C)
	if want := round2(round2(lower) - 10); v.Excess != want {
		t.Errorf("Excess = %f, want %f", v.Excess, want)
	}
	if v.Projected != lower {
		t.Errorf("Projected = %f, want %f", v.Projected, lower)
	}

	out := m.ClassifySamples([]Sample{s})
	if len(out) != 1 {
		t.Fatalf("ClassifySamples returned %d records, want 1", len(out))
	}
	want := color.ScaledOklchToColor(color.Oklch{L: lower, C: 20, H: 29.5}, false)
	if out[0].Modeled != want {
		t.Errorf("Modeled = %s, want %s", out[0].Modeled.Hex(), want.Hex())
	}
	if out[0].Index != 7 || out[0].HueFloor != 29 {
		t.Errorf("record = %+v", out[0])
	}
}

func TestClassify_OutsideAbove(t *testing.T) {
	table, _ := NewCuspTable([]Cusp{{HueFloor: 29, LRaw: 62.8, C: 25.77}})
	m, _ := NewModel(table)

	v := m.Classify(Sample{LRaw: 95, C: 20, H: 29.5})
	if !v.Outside() || v.Projected >= 95 {
		t.Fatalf("expected outside above the white-to-cusp segment, got %+v", v)
	}
	if want := round2(v.L - v.LUpper); v.Excess != want {
		t.Errorf("Excess = %f, want %f", v.Excess, want)
	}
}

func TestClassify_RoundingNoiseFloor(t *testing.T) {
	table, _ := NewCuspTable([]Cusp{{HueFloor: 0, LRaw: 60, C: 20}})
	m, _ := NewModel(table)

	// 0.001 below the lower segment disappears at two decimals.
	v := m.Classify(Sample{LRaw: 29.999, C: 10, H: 0.5})
	if v.Outside() {
		t.Errorf("sub-visible deviation flagged: %+v", v)
	}
}

func TestClassify_BorrowsNearestCusp(t *testing.T) {
	table, _ := NewCuspTable([]Cusp{{HueFloor: 100, LRaw: 90, C: 20}})
	m, _ := NewModel(table)

	v := m.Classify(Sample{LRaw: 50, C: 1, H: 105})
	if v.Cusp.HueFloor != 100 {
		t.Errorf("Cusp.HueFloor = %d, want 100", v.Cusp.HueFloor)
	}
	if v.Bucket != 105 {
		t.Errorf("Bucket = %d, want 105", v.Bucket)
	}
}

func TestClassifyGrid(t *testing.T) {
	// 48^3 spans more than one chunk.
	g := Grid{Resolution: 48}
	samples := g.Samples()
	m, err := NewModel(CuspsFromSamples(samples))
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.ClassifyGrid(g, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("expected some samples outside the triangle model")
	}

	for i, o := range got {
		if o.Excess <= 0 {
			t.Fatalf("record %d has non-positive excess %f", i, o.Excess)
		}
		if i > 0 && o.Excess > got[i-1].Excess {
			t.Fatalf("records not sorted by descending excess at %d", i)
		}
		if i > 0 && o.Excess == got[i-1].Excess && o.Index < got[i-1].Index {
			t.Fatalf("equal excess not in grid order at %d", i)
		}
	}

	if diff := cmp.Diff(m.ClassifySamples(samples), got); diff != "" {
		t.Errorf("parallel and sequential classification differ (-seq +par):\n%s", diff)
	}
}

func TestClassifyColor(t *testing.T) {
	m, err := NewModel(CuspsFromSamples(Grid{Resolution: 16}.Samples()))
	if err != nil {
		t.Fatal(err)
	}

	s, v := m.ClassifyColor(color.Color{R: 255})
	if s.Bucket() != 29 || v.Bucket != 29 {
		t.Errorf("bucket = %d / %d, want 29", s.Bucket(), v.Bucket)
	}
	if v.Outside() {
		t.Errorf("pure red is a grid corner and cusp of its bucket, got %+v", v)
	}
}

func TestClassify_GrayCuspBorrowsChromatic(t *testing.T) {
	// At resolution 2 bucket 0 only holds black and white.
	m, err := NewModel(CuspsFromSamples(Grid{Resolution: 2}.Samples()))
	if err != nil {
		t.Fatal(err)
	}

	_, v := m.ClassifyColor(color.Color{R: 0xc5, G: 0x53, B: 0x7c})
	if v.Bucket != 0 {
		t.Fatalf("Bucket = %d, want 0", v.Bucket)
	}
	// Red (bucket 29) is closer than magenta (bucket 328).
	if v.Cusp.HueFloor != 29 || v.Cusp.C <= 0 {
		t.Fatalf("Cusp = %+v, want the red cusp of bucket 29", v.Cusp)
	}
	if math.Abs(v.LLower-36.77) > 0.02 || math.Abs(v.LUpper-78.21) > 0.02 {
		t.Errorf("band = [%.2f, %.2f], want about [36.77, 78.21]", v.LLower, v.LUpper)
	}
	if v.Outside() {
		t.Errorf("L %.2f lies inside the red triangle, got %+v", v.L, v)
	}

	_, gray := m.ClassifyColor(color.Color{R: 128, G: 128, B: 128})
	if gray.Outside() {
		t.Errorf("gray must stay inside, got %+v", gray)
	}
}

func TestClassify_OnlyGrayCusps(t *testing.T) {
	table, _ := NewCuspTable([]Cusp{{HueFloor: 0, LRaw: 0, C: 0}})
	m, _ := NewModel(table)

	v := m.Classify(Sample{LRaw: 50, C: 10, H: 0.5})
	if !v.Outside() {
		t.Fatalf("chromatic color inside a collapsed triangle: %+v", v)
	}
	if v.Excess != 50 || v.Projected != 100 {
		t.Errorf("Excess = %f, Projected = %f, want 50 and 100", v.Excess, v.Projected)
	}

	if v := m.Classify(Sample{LRaw: 50, C: 0}); v.Outside() {
		t.Errorf("gray color outside: %+v", v)
	}
}

func TestClassify_ProjectedStaysInRange(t *testing.T) {
	tests := []struct {
		name string
		cusp Cusp
		s    Sample
		want float64
	}{
		{
			name: "lower segment past white",
			cusp: Cusp{HueFloor: 0, LRaw: 60, C: 20},
			s:    Sample{LRaw: 50, C: 40, H: 0.5},
			want: 100,
		},
		{
			name: "upper segment below black",
			cusp: Cusp{HueFloor: 0, LRaw: 20, C: 10},
			s:    Sample{LRaw: 90, C: 40, H: 0.5},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, _ := NewCuspTable([]Cusp{tt.cusp})
			m, _ := NewModel(table)

			v := m.Classify(tt.s)
			if !v.Outside() {
				t.Fatalf("expected outside, got %+v", v)
			}
			if v.Projected != tt.want {
				t.Errorf("Projected = %f, want %f", v.Projected, tt.want)
			}
			if out := m.ClassifySamples([]Sample{tt.s}); len(out) != 1 {
				t.Errorf("ClassifySamples returned %d records, want 1", len(out))
			}
		})
	}
}
