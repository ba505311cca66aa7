package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/jsvensson/okgamut/internal/color"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

func number(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

// MakeOklchFunc creates an HCL function that builds a hex color from
// corrected Oklch on the [0, 100] scale.
// Usage: oklch(70, 12, 145)
func MakeOklchFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Converts corrected Oklch (L and C in 0-100, H in degrees) to a hex color",
		Params: []function.Parameter{
			{Name: "lightness", Type: cty.Number},
			{Name: "chroma", Type: cty.Number},
			{Name: "hue", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			lch := color.Oklch{L: number(args[0]), C: number(args[1]), H: number(args[2])}
			return cty.StringVal(color.ScaledOklchToColor(lch, true).Hex()), nil
		},
	})
}

// MakeOklabFunc creates an HCL function that builds a hex color from
// corrected Oklab on the [0, 100] scale.
// Usage: oklab(70, -10, 8)
func MakeOklabFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Converts corrected Oklab (all components in the 0-100 scale) to a hex color",
		Params: []function.Parameter{
			{Name: "lightness", Type: cty.Number},
			{Name: "a", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			lab := color.Oklab{L: number(args[0]), A: number(args[1]), B: number(args[2])}
			return cty.StringVal(color.ScaledOklabToColor(lab, true).Hex()), nil
		},
	})
}

// MakeLightnessFunc creates an HCL function that sets a color's corrected
// lightness, keeping its hue and chroma.
// Usage: lightness("#hex", 40)
func MakeLightnessFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Replaces the corrected Oklch lightness (0-100) of a color",
		Params: []function.Parameter{
			{Name: "color", Type: cty.String},
			{Name: "lightness", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			c, err := color.ParseHex(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(color.WithLightness(c, number(args[1])).Hex()), nil
		},
	})
}

// MakeLightenFunc creates an HCL function that shifts a color's corrected
// lightness. Negative amounts darken.
// Usage: lighten("#hex", 10)
func MakeLightenFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Shifts the corrected Oklch lightness of a color by the given amount (-100 to 100)",
		Params: []function.Parameter{
			{Name: "color", Type: cty.String},
			{Name: "amount", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			c, err := color.ParseHex(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(color.Lighten(c, number(args[1])).Hex()), nil
		},
	})
}

// BuildEvalContext creates the HCL evaluation context for config files.
func BuildEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"oklch":     MakeOklchFunc(),
			"oklab":     MakeOklabFunc(),
			"lightness": MakeLightnessFunc(),
			"lighten":   MakeLightenFunc(),
		},
	}
}
