package color

// Hex-facing conversions use a [0, 100] scale for L, a, b and C, with hue
// left in degrees. Lightness correction is applied on the way out of sRGB
// and undone on the way back when correct is true.

const scale = 100.0

// ScaledOklab converts c to scaled Oklab.
func ScaledOklab(c Color, correct bool) Oklab {
	lab := RGBToOklab(c.RGB())
	if correct {
		lab.L = CorrectLightness(lab.L)
	}
	return Oklab{L: scale * lab.L, A: scale * lab.A, B: scale * lab.B}
}

// ScaledOklabToColor converts scaled Oklab back to an 8-bit color.
// Out-of-gamut values are clipped.
func ScaledOklabToColor(lab Oklab, correct bool) Color {
	l := lab.L / scale
	if correct {
		l = CorrectLightnessInv(l)
	}
	return OklabToRGB(Oklab{L: l, A: lab.A / scale, B: lab.B / scale}).Quantize()
}

// ScaledOklch converts c to scaled Oklch.
func ScaledOklch(c Color, correct bool) Oklch {
	lch := RGBToOklch(c.RGB())
	if correct {
		lch.L = CorrectLightness(lch.L)
	}
	return Oklch{L: scale * lch.L, C: scale * lch.C, H: lch.H}
}

// ScaledOklchToColor converts scaled Oklch back to an 8-bit color.
// Out-of-gamut values are clipped.
func ScaledOklchToColor(lch Oklch, correct bool) Color {
	l := lch.L / scale
	if correct {
		l = CorrectLightnessInv(l)
	}
	return OklchToRGB(Oklch{L: l, C: lch.C / scale, H: lch.H}).Quantize()
}

// HexToOklab converts a batch of hex strings to scaled Oklab.
func HexToOklab(hexes []string, correct bool) ([]Oklab, error) {
	out := make([]Oklab, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = ScaledOklab(c, correct)
	}
	return out, nil
}

// OklabToHex converts a batch of scaled Oklab colors to hex strings.
func OklabToHex(labs []Oklab, correct bool) []string {
	out := make([]string, len(labs))
	for i, lab := range labs {
		out[i] = ScaledOklabToColor(lab, correct).Hex()
	}
	return out
}

// HexToOklch converts a batch of hex strings to scaled Oklch.
func HexToOklch(hexes []string, correct bool) ([]Oklch, error) {
	out := make([]Oklch, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = ScaledOklch(c, correct)
	}
	return out, nil
}

// OklchToHex converts a batch of scaled Oklch colors to hex strings.
func OklchToHex(lchs []Oklch, correct bool) []string {
	out := make([]string, len(lchs))
	for i, lch := range lchs {
		out[i] = ScaledOklchToColor(lch, correct).Hex()
	}
	return out
}
