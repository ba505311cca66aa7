package gamut

import (
	"fmt"
	"math/rand"

	"github.com/jsvensson/okgamut/internal/color"
)

// DefaultSeed seeds the estimator when no seed is configured.
const DefaultSeed int64 = 20211018

// estimateChunk is the number of draws per independently seeded stream.
const estimateChunk = 1 << 14

// gamutTolerance absorbs float noise for points lying exactly on the boundary.
const gamutTolerance = 1e-9

// Estimate is the outcome of a Monte Carlo run over the triangle model.
type Estimate struct {
	Samples int
	Bad     int
	Seed    int64
}

// Fraction returns the share of model-interior draws outside sRGB.
func (e Estimate) Fraction() float64 {
	if e.Samples == 0 {
		return 0
	}
	return float64(e.Bad) / float64(e.Samples)
}

// EstimateError draws samples points uniformly inside the triangle model and
// counts how many fall outside the sRGB gamut, i.e. the model's over-coverage.
//
// Draws are split into fixed-size streams, each with its own generator seeded
// from seed and the stream position, so the result depends only on seed and
// samples, never on workers.
func EstimateError(t *CuspTable, samples int, seed int64, workers int) (Estimate, error) {
	if t == nil || t.Len() == 0 {
		return Estimate{}, ErrEmptyTable
	}
	if samples < 1 {
		return Estimate{}, fmt.Errorf("sample count must be positive, got %d", samples)
	}
	log.Infof("estimating model error with %d samples (seed %d)", samples, seed)

	cusps := t.dense()
	bad := make([]int, len(spans(samples, estimateChunk)))
	err := walk(samples, estimateChunk, workers, func(chunk int, s span) error {
		rng := rand.New(rand.NewSource(streamSeed(seed, chunk)))
		for i := s.lo; i < s.hi; i++ {
			if !InGamut(drawInTriangle(rng, &cusps)) {
				bad[chunk]++
			}
		}
		return nil
	})
	if err != nil {
		return Estimate{}, fmt.Errorf("sampling model: %w", err)
	}

	e := Estimate{Samples: samples, Seed: seed}
	for _, n := range bad {
		e.Bad += n
	}
	log.Infof("%d of %d draws outside sRGB (%.4f%%)", e.Bad, e.Samples, 100*e.Fraction())
	return e, nil
}

// streamSeed derives the seed of one draw stream.
func streamSeed(seed int64, stream int) int64 {
	return seed ^ (int64(stream) * 0x5851f42d4c957f2d)
}

// drawInTriangle picks a hue uniformly, then a point uniformly inside that
// hue's triangle by folding the unit square onto the unit triangle. The
// result is raw scaled Oklch.
func drawInTriangle(rng *rand.Rand, cusps *[HueBuckets]Cusp) color.Oklch {
	h := rng.Float64() * 360
	u, v := rng.Float64(), rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	cusp := cusps[HueBucket(h)]
	return color.Oklch{
		L: u*whiteL + v*cusp.LRaw,
		C: v * cusp.C,
		H: h,
	}
}

// InGamut reports whether a raw scaled Oklch color is reproducible in sRGB.
func InGamut(lch color.Oklch) bool {
	unit := color.Oklch{L: lch.L / 100, C: lch.C / 100, H: lch.H}
	return color.OklabToLinearRGB(unit.Lab()).InGamut(gamutTolerance)
}
