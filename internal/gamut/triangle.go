package gamut

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jsvensson/okgamut/internal/color"
)

// whiteL is raw lightness of the achromatic top of every hue slice.
const whiteL = 100.0

// ErrEmptyTable is returned when a model or estimate needs cusps but has none.
var ErrEmptyTable = errors.New("cusp table is empty")

// Model approximates each hue slice of the gamut by the triangle spanned by
// black (L=0, C=0), white (L=100, C=0) and the slice's cusp, in raw lightness.
type Model struct {
	table *CuspTable
}

// NewModel returns the triangle model for t.
func NewModel(t *CuspTable) (*Model, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	return &Model{table: t}, nil
}

// Cusps returns the table the model was built from.
func (m *Model) Cusps() *CuspTable {
	return m.table
}

// Band returns the lightness interval the model allows at chroma c. Above
// the cusp chroma the interval is inverted (lower > upper). A cusp with zero
// chroma collapses the triangle to the gray axis, so any c > 0 gets the empty
// band [100, 0].
func Band(cusp Cusp, c float64) (lower, upper float64) {
	if cusp.C <= 0 {
		if c > 0 {
			return whiteL, 0
		}
		return 0, whiteL
	}
	sat := c / cusp.C
	return sat * cusp.LRaw, sat*(cusp.LRaw-whiteL) + whiteL
}

// ChromaCeiling returns the largest chroma the model allows at raw lightness l.
func ChromaCeiling(cusp Cusp, l float64) float64 {
	if l <= cusp.LRaw {
		if cusp.LRaw <= 0 {
			return 0
		}
		return cusp.C * l / cusp.LRaw
	}
	if cusp.LRaw >= whiteL {
		return 0
	}
	return cusp.C * (whiteL - l) / (whiteL - cusp.LRaw)
}

// Verdict is the classification of one color against the model. Lightness
// fields and Excess are rounded to two decimals and compared after rounding.
type Verdict struct {
	Bucket    int
	Cusp      Cusp
	L         float64
	LLower    float64
	LUpper    float64
	C         float64
	CUpper    float64
	Excess    float64 // distance past the violated segment, 0 if inside
	Projected float64 // raw lightness on the violated segment, within [0, 100]
}

// Outside reports whether the color lies outside the model.
func (v Verdict) Outside() bool {
	return v.Excess > 0
}

// Classify places s against the triangle of its hue bucket. A bucket without
// a chromatic cusp borrows the nearest one that has chroma. When the band is
// inverted the lower segment is the one violated.
func (m *Model) Classify(s Sample) Verdict {
	b := s.Bucket()
	cusp, _ := m.table.triangleCusp(b)

	lower, upper := Band(cusp, s.C)
	v := Verdict{
		Bucket:    b,
		Cusp:      cusp,
		L:         round2(s.LRaw),
		LLower:    round2(lower),
		LUpper:    round2(upper),
		C:         s.C,
		CUpper:    ChromaCeiling(cusp, s.LRaw),
		Projected: s.LRaw,
	}
	switch {
	case v.L < v.LLower:
		v.Excess = round2(v.LLower - v.L)
		v.Projected = min(lower, whiteL)
	case v.L > v.LUpper:
		v.Excess = round2(v.L - v.LUpper)
		v.Projected = max(upper, 0)
	}
	return v
}

// ClassifyColor converts an arbitrary 8-bit color and classifies it.
func (m *Model) ClassifyColor(c color.Color) (Sample, Verdict) {
	s := NewSample(-1, c.RGB())
	return s, m.Classify(s)
}

// Outside is a sampled color the triangle model fails to contain.
type Outside struct {
	HueFloor int
	Color    color.Color
	Modeled  color.Color // nearest color on the violated segment
	L        float64
	LLower   float64
	LUpper   float64
	C        float64
	CUpper   float64
	Excess   float64
	Index    int
}

func (m *Model) outside(s Sample) (Outside, bool) {
	v := m.Classify(s)
	if !v.Outside() {
		return Outside{}, false
	}
	// The model lives in raw lightness, so no correction on the way back.
	modeled := color.ScaledOklchToColor(color.Oklch{L: v.Projected, C: s.C, H: s.H}, false)
	return Outside{
		HueFloor: v.Bucket,
		Color:    s.Color(),
		Modeled:  modeled,
		L:        v.L,
		LLower:   v.LLower,
		LUpper:   v.LUpper,
		C:        v.C,
		CUpper:   v.CUpper,
		Excess:   v.Excess,
		Index:    s.Index,
	}, true
}

// ClassifySamples returns the samples outside the model, worst first.
func (m *Model) ClassifySamples(samples []Sample) []Outside {
	var out []Outside
	for _, s := range samples {
		if o, ok := m.outside(s); ok {
			out = append(out, o)
		}
	}
	sortOutside(out)
	return out
}

// ClassifyGrid classifies every sample of g using up to workers goroutines
// and returns those outside the model, worst first. Equal excesses keep grid
// order.
func (m *Model) ClassifyGrid(g Grid, workers int) ([]Outside, error) {
	if _, err := NewGrid(g.Resolution); err != nil {
		return nil, err
	}
	log.Infof("classifying %d samples against %d cusps", g.Len(), m.table.Len())

	parts := make([][]Outside, len(spans(g.Len(), chunkSize)))
	err := walk(g.Len(), chunkSize, workers, func(chunk int, s span) error {
		var found []Outside
		for i := s.lo; i < s.hi; i++ {
			if o, ok := m.outside(g.Sample(i)); ok {
				found = append(found, o)
			}
		}
		parts[chunk] = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("classifying grid: %w", err)
	}

	out := slices.Concat(parts...)
	sortOutside(out)
	log.Infof("%d samples lie outside the triangle model", len(out))
	return out, nil
}

func sortOutside(out []Outside) {
	slices.SortStableFunc(out, func(a, b Outside) int {
		return cmp.Compare(b.Excess, a.Excess)
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
