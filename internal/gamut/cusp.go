package gamut

import (
	"fmt"
	"slices"

	"github.com/jsvensson/okgamut/internal/color"
)

// Cusp is the most saturated sampled color of one hue bucket.
type Cusp struct {
	HueFloor int
	Color    color.Color
	L        float64 // corrected lightness, [0, 100]
	LRaw     float64 // raw Oklab lightness, [0, 100]
	C        float64
	H        float64
	Index    int // grid ordinal of the winning sample
}

func cuspFromSample(s Sample) Cusp {
	return Cusp{
		HueFloor: s.Bucket(),
		Color:    s.Color(),
		L:        s.L,
		LRaw:     s.LRaw,
		C:        s.C,
		H:        s.H,
		Index:    s.Index,
	}
}

// CuspTable holds at most one Cusp per hue bucket, ordered by bucket.
// Buckets the grid never reached are absent.
type CuspTable struct {
	cusps []Cusp
	index [HueBuckets]int
}

// NewCuspTable builds a table from cusps with distinct buckets in [0, 359].
func NewCuspTable(cusps []Cusp) (*CuspTable, error) {
	t := &CuspTable{cusps: slices.Clone(cusps)}
	slices.SortFunc(t.cusps, func(a, b Cusp) int { return a.HueFloor - b.HueFloor })

	for i := range t.index {
		t.index[i] = -1
	}
	for i, c := range t.cusps {
		if c.HueFloor < 0 || c.HueFloor >= HueBuckets {
			return nil, fmt.Errorf("cusp hue bucket %d out of range", c.HueFloor)
		}
		if t.index[c.HueFloor] >= 0 {
			return nil, fmt.Errorf("duplicate cusp for hue bucket %d", c.HueFloor)
		}
		t.index[c.HueFloor] = i
	}
	return t, nil
}

// Len returns the number of occupied buckets.
func (t *CuspTable) Len() int {
	return len(t.cusps)
}

// All returns the cusps ordered by bucket.
func (t *CuspTable) All() []Cusp {
	return slices.Clone(t.cusps)
}

// Lookup returns the cusp of bucket, if that bucket is occupied.
func (t *CuspTable) Lookup(bucket int) (Cusp, bool) {
	if bucket < 0 || bucket >= HueBuckets || t.index[bucket] < 0 {
		return Cusp{}, false
	}
	return t.cusps[t.index[bucket]], true
}

// Nearest returns the cusp of the occupied bucket closest to bucket on the
// hue circle. Equidistant neighbors resolve to the lower hue.
func (t *CuspTable) Nearest(bucket int) (Cusp, bool) {
	return t.nearest(bucket, func(Cusp) bool { return true })
}

func (t *CuspTable) nearest(bucket int, keep func(Cusp) bool) (Cusp, bool) {
	if len(t.cusps) == 0 {
		return Cusp{}, false
	}
	bucket = ((bucket % HueBuckets) + HueBuckets) % HueBuckets
	for d := 0; d <= HueBuckets/2; d++ {
		if c, ok := t.Lookup((bucket - d + HueBuckets) % HueBuckets); ok && keep(c) {
			return c, true
		}
		if c, ok := t.Lookup((bucket + d) % HueBuckets); ok && keep(c) {
			return c, true
		}
	}
	return Cusp{}, false
}

// triangleCusp returns the cusp that spans bucket's triangle: the nearest one
// with chroma. A gray cusp spans no triangle; on coarse grids it is all that
// bucket 0 holds, since achromatic samples land there. Tables without any
// chromatic cusp fall back to Nearest.
func (t *CuspTable) triangleCusp(bucket int) (Cusp, bool) {
	if c, ok := t.nearest(bucket, func(c Cusp) bool { return c.C > 0 }); ok {
		return c, true
	}
	return t.Nearest(bucket)
}

// dense returns the triangle cusp of every bucket. The table must not be
// empty.
func (t *CuspTable) dense() [HueBuckets]Cusp {
	var out [HueBuckets]Cusp
	for b := range out {
		out[b], _ = t.triangleCusp(b)
	}
	return out
}

// reduction tracks the best sample seen per bucket.
type reduction struct {
	best [HueBuckets]Sample
	seen [HueBuckets]bool
}

// beats orders samples within a bucket: higher chroma first, then lower
// grid ordinal. This is a total order, so merge order does not matter.
func beats(s, cur Sample) bool {
	if s.C != cur.C {
		return s.C > cur.C
	}
	return s.Index < cur.Index
}

func (r *reduction) add(s Sample) {
	b := s.Bucket()
	if !r.seen[b] || beats(s, r.best[b]) {
		r.best[b] = s
		r.seen[b] = true
	}
}

func (r *reduction) merge(o *reduction) {
	for b := range o.best {
		if o.seen[b] {
			r.add(o.best[b])
		}
	}
}

func (r *reduction) table() *CuspTable {
	cusps := make([]Cusp, 0, HueBuckets)
	for b, s := range r.best {
		if r.seen[b] {
			cusps = append(cusps, cuspFromSample(s))
		}
	}
	// Buckets are distinct and in range by construction.
	t, _ := NewCuspTable(cusps)
	return t
}

// CuspsFromSamples reduces samples to one cusp per occupied hue bucket.
func CuspsFromSamples(samples []Sample) *CuspTable {
	var r reduction
	for _, s := range samples {
		r.add(s)
	}
	return r.table()
}

// ExtractCusps samples g and reduces it to a cusp table using up to workers
// goroutines (0 means GOMAXPROCS).
func ExtractCusps(g Grid, workers int) (*CuspTable, error) {
	if _, err := NewGrid(g.Resolution); err != nil {
		return nil, err
	}
	log.Infof("extracting cusps from %d samples", g.Len())

	parts := make([]*reduction, len(spans(g.Len(), chunkSize)))
	err := walk(g.Len(), chunkSize, workers, func(chunk int, s span) error {
		r := new(reduction)
		for i := s.lo; i < s.hi; i++ {
			r.add(g.Sample(i))
		}
		parts[chunk] = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sampling grid: %w", err)
	}

	var total reduction
	for _, p := range parts {
		total.merge(p)
	}
	t := total.table()
	log.Infof("found cusps for %d hue buckets", t.Len())
	return t, nil
}
