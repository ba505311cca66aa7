package lsp

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/config"
	"github.com/jsvensson/okgamut/internal/gamut"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"
)

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
)

const diagSource = "okgamut"

// attrRule validates one numeric or string setting.
type attrRule struct {
	kind     cty.Type
	unsigned bool
	max      int64 // 0 means unbounded
}

// settings lists the attributes each settings block accepts.
var settings = map[string]map[string]attrRule{
	"grid": {
		"resolution": {kind: cty.Number, unsigned: true, max: gamut.MaxResolution},
		"workers":    {kind: cty.Number, unsigned: true},
	},
	"estimate": {
		"samples": {kind: cty.Number, unsigned: true},
		"seed":    {kind: cty.Number},
	},
	"output": {
		"cusps":   {kind: cty.String},
		"outside": {kind: cty.String},
	},
}

// AnalysisResult holds everything the server derives from one config file.
type AnalysisResult struct {
	Diagnostics []protocol.Diagnostic
	Colors      []ColorLocation
}

// ColorLocation records a resolved probe color at a specific source position.
type ColorLocation struct {
	Range  protocol.Range
	Probe  string
	Color  color.Color
	IsCall bool // computed by a function rather than written as a hex literal
}

// hclPosToLSP converts an HCL position to an LSP position.
// HCL positions are 1-based; LSP positions are 0-based.
func hclPosToLSP(pos hcl.Pos) protocol.Position {
	return protocol.Position{
		Line:      uint32(pos.Line - 1),
		Character: uint32(pos.Column - 1),
	}
}

func fileStart(filename string) hcl.Range {
	pos := hcl.Pos{Line: 1, Column: 1}
	return hcl.Range{Filename: filename, Start: pos, End: pos}
}

func hclRangeToLSP(r hcl.Range) protocol.Range {
	return protocol.Range{
		Start: hclPosToLSP(r.Start),
		End:   hclPosToLSP(r.End),
	}
}

// Analyze parses a config file from memory and reports every problem it
// finds rather than stopping at the first.
func Analyze(filename, content string) *AnalysisResult {
	result := &AnalysisResult{}

	file, diags := hclsyntax.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		result.addDiags(diags)
		return result
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		result.addError(fileStart(filename), "internal error: parsed body is not *hclsyntax.Body")
		return result
	}

	for name, attr := range body.Attributes {
		result.addError(attr.NameRange, fmt.Sprintf("unexpected top-level attribute %q", name))
	}

	ctx := config.BuildEvalContext()
	seenBlocks := make(map[string]bool)
	probes := make(map[string]bool)

	for _, block := range body.Blocks {
		if block.Type == "probe" {
			result.analyzeProbe(block, ctx, probes)
			continue
		}

		rules, known := settings[block.Type]
		if !known {
			result.addError(block.TypeRange, fmt.Sprintf("unknown block %q (valid: grid, estimate, output, probe)", block.Type))
			continue
		}
		if seenBlocks[block.Type] {
			result.addError(block.TypeRange, fmt.Sprintf("duplicate %s block", block.Type))
		}
		seenBlocks[block.Type] = true
		if len(block.Labels) > 0 {
			result.addError(block.LabelRanges[0], fmt.Sprintf("%s block takes no label", block.Type))
		}
		result.analyzeSettings(block, ctx, rules)
	}

	return result
}

func (r *AnalysisResult) analyzeSettings(block *hclsyntax.Block, ctx *hcl.EvalContext, rules map[string]attrRule) {
	for _, nested := range block.Body.Blocks {
		r.addError(nested.TypeRange, fmt.Sprintf("%s block has no nested blocks", block.Type))
	}

	for name, attr := range block.Body.Attributes {
		rule, ok := rules[name]
		if !ok {
			r.addError(attr.NameRange, fmt.Sprintf("unknown attribute %s.%s", block.Type, name))
			continue
		}

		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			r.addDiags(diags)
			continue
		}
		if val.IsNull() || !val.Type().Equals(rule.kind) {
			r.addError(attr.Expr.Range(), fmt.Sprintf("%s.%s must be a %s", block.Type, name, rule.kind.FriendlyName()))
			continue
		}
		if rule.kind != cty.Number {
			continue
		}

		bf := val.AsBigFloat()
		n, acc := bf.Int64()
		if !bf.IsInt() || acc != big.Exact {
			r.addError(attr.Expr.Range(), fmt.Sprintf("%s.%s must be a whole number", block.Type, name))
			continue
		}
		r.checkRange(block.Type+"."+name, attr.Expr.Range(), n, rule)
	}
}

func (r *AnalysisResult) checkRange(name string, rng hcl.Range, n int64, rule attrRule) {
	switch {
	case name == "grid.resolution" && n == 1:
		r.addError(rng, fmt.Sprintf("grid.resolution must be in [2, %d] (0 uses the default)", gamut.MaxResolution))
	case rule.unsigned && n < 0:
		r.addError(rng, fmt.Sprintf("%s must not be negative", name))
	case rule.max > 0 && n > rule.max:
		r.addError(rng, fmt.Sprintf("%s must be at most %d", name, rule.max))
	}
}

func (r *AnalysisResult) analyzeProbe(block *hclsyntax.Block, ctx *hcl.EvalContext, seen map[string]bool) {
	if len(block.Labels) != 1 {
		r.addError(block.TypeRange, "probe block needs exactly one name label")
		return
	}
	name := block.Labels[0]
	if seen[name] {
		r.addError(block.LabelRanges[0], fmt.Sprintf("probe %q defined more than once", name))
	}
	seen[name] = true

	for attrName, attr := range block.Body.Attributes {
		if attrName != "color" {
			r.addError(attr.NameRange, fmt.Sprintf("unknown attribute %q (valid: color)", attrName))
		}
	}

	attr, ok := block.Body.Attributes["color"]
	if !ok {
		r.addError(block.DefRange(), fmt.Sprintf("probe %q is missing required 'color' attribute", name))
		return
	}

	val, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		r.addDiags(diags)
		return
	}
	if val.IsNull() || val.Type() != cty.String {
		r.addError(attr.Expr.Range(), "color must be a hex string")
		return
	}

	c, err := color.ParseHex(val.AsString())
	if err != nil {
		r.addError(attr.Expr.Range(), err.Error())
		return
	}

	_, isCall := attr.Expr.(*hclsyntax.FunctionCallExpr)
	r.Colors = append(r.Colors, ColorLocation{
		Range:  hclRangeToLSP(attr.Expr.Range()),
		Probe:  name,
		Color:  c,
		IsCall: isCall,
	})
}

// hclDiagToLSP converts an HCL diagnostic to an LSP diagnostic.
func hclDiagToLSP(d *hcl.Diagnostic) protocol.Diagnostic {
	sev := DiagError
	if d.Severity == hcl.DiagWarning {
		sev = DiagWarning
	}

	diag := protocol.Diagnostic{
		Severity: &sev,
		Message:  d.Summary,
		Source:   strPtr(diagSource),
	}
	if d.Detail != "" {
		diag.Message = d.Summary + ": " + d.Detail
	}
	if d.Subject != nil {
		diag.Range = hclRangeToLSP(*d.Subject)
	}
	return diag
}

func (r *AnalysisResult) addDiags(diags hcl.Diagnostics) {
	for _, d := range diags {
		r.Diagnostics = append(r.Diagnostics, hclDiagToLSP(d))
	}
}

func (r *AnalysisResult) addError(rng hcl.Range, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    hclRangeToLSP(rng),
		Severity: &DiagError,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

func strPtr(s string) *string {
	return &s
}
