// Package gamut models the sRGB gamut in Oklch: it samples the sRGB cube,
// extracts the most saturated color per integer hue, approximates each hue
// slice by two line segments and measures how well that approximation fits.
//
// Tables use the hex-facing scale: lightness and chroma in [0, 100], hue in
// degrees. The triangle model works in raw Oklab lightness throughout.
package gamut

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/jsvensson/okgamut/internal/color"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("okgamut.gamut")

// HueBuckets is the number of integer hue buckets, 0 through 359.
const HueBuckets = 360

// MaxResolution bounds the grid to keep the sample count addressable.
const MaxResolution = 1024

// chunkSize is the number of consecutive sample ordinals handled by one task.
const chunkSize = 1 << 16

// ErrResolution is returned for a grid resolution outside [2, MaxResolution].
var ErrResolution = errors.New("grid resolution out of range")

// Grid enumerates the sRGB cube at Resolution evenly spaced values per channel.
//
// Sample ordinals are fixed: red is the outermost loop and blue the innermost,
// so ordinal i = (r*N + g)*N + b. Every tie-break in this package refers to
// this order, never to the order in which parallel work completes.
type Grid struct {
	Resolution int
}

// NewGrid returns a grid with the given per-channel resolution.
func NewGrid(resolution int) (Grid, error) {
	if resolution < 2 || resolution > MaxResolution {
		return Grid{}, fmt.Errorf("%w: %d (want 2..%d)", ErrResolution, resolution, MaxResolution)
	}
	return Grid{Resolution: resolution}, nil
}

// Len returns the number of samples in the grid.
func (g Grid) Len() int {
	n := g.Resolution
	return n * n * n
}

// At returns the sRGB color at ordinal i.
func (g Grid) At(i int) color.RGB {
	n := g.Resolution
	step := float64(n - 1)
	return color.RGB{
		R: float64(i/(n*n)) / step,
		G: float64((i/n)%n) / step,
		B: float64(i%n) / step,
	}
}

// Sample converts the grid point at ordinal i.
func (g Grid) Sample(i int) Sample {
	return NewSample(i, g.At(i))
}

// Samples materializes the whole grid in ordinal order.
func (g Grid) Samples() []Sample {
	out := make([]Sample, g.Len())
	for i := range out {
		out[i] = g.Sample(i)
	}
	return out
}

// Sample is one sRGB color with its Oklch coordinates.
type Sample struct {
	Index int
	RGB   color.RGB
	L     float64 // corrected lightness, [0, 100]
	LRaw  float64 // raw Oklab lightness, [0, 100]
	C     float64
	H     float64
}

// NewSample converts rgb, tagging it with ordinal index.
func NewSample(index int, rgb color.RGB) Sample {
	lch := color.RGBToOklch(rgb)
	return Sample{
		Index: index,
		RGB:   rgb,
		L:     100 * color.CorrectLightness(lch.L),
		LRaw:  100 * lch.L,
		C:     100 * lch.C,
		H:     lch.H,
	}
}

// Bucket returns the integer hue bucket of s.
func (s Sample) Bucket() int {
	return HueBucket(s.H)
}

// Color returns s quantized to 8 bits.
func (s Sample) Color() color.Color {
	return s.RGB.Quantize()
}

// HueBucket returns floor(h) for a hue canonicalized to [0, 360).
func HueBucket(h float64) int {
	b := int(math.Floor(color.NormalizeHue(h)))
	if b >= HueBuckets {
		b = HueBuckets - 1
	}
	return b
}

type span struct {
	lo, hi int
}

// spans splits [0, n) into consecutive ranges of at most size elements.
func spans(n, size int) []span {
	out := make([]span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, span{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

// walk runs fn once per span of [0, n), at most workers at a time. fn gets
// the span's position so callers can merge results in ordinal order.
func walk(n, size, workers int, fn func(chunk int, s span) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range spans(n, size) {
		g.Go(func() error {
			return fn(i, s)
		})
	}
	return g.Wait()
}
