package color

import "math"

// Lightness estimate from
// https://bottosson.github.io/posts/colorpicker/#intermission---a-new-lightness-estimate-for-oklab
const (
	k1 = 0.206
	k2 = 0.03
	k3 = (1 + k1) / (1 + k2)
)

// CorrectLightness remaps raw Oklab lightness in [0, 1] to a perceptually
// more uniform estimate in [0, 1].
func CorrectLightness(x float64) float64 {
	t := k3*x - k1
	return 0.5 * (t + math.Sqrt(t*t+4*k2*k3*x))
}

// CorrectLightnessInv is the exact inverse of CorrectLightness.
func CorrectLightnessInv(y float64) float64 {
	return y * (y + k1) / (k3 * (y + k2))
}
