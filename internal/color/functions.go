package color

// WithLightness returns c with its corrected lightness replaced by l, in the
// hex-facing [0, 100] scale, keeping hue and chroma. The result is clipped to
// the sRGB cube.
func WithLightness(c Color, l float64) Color {
	lch := ScaledOklch(c, true)
	lch.L = l
	return ScaledOklchToColor(lch, true)
}

// Lighten shifts the corrected lightness of c by delta on the [0, 100] scale,
// saturating at black and white.
func Lighten(c Color, delta float64) Color {
	lch := ScaledOklch(c, true)
	l := lch.L + delta
	if l < 0 {
		l = 0
	}
	if l > scale {
		l = scale
	}
	lch.L = l
	return ScaledOklchToColor(lch, true)
}
