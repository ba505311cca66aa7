package lsp

import (
	"strings"
	"testing"

	"github.com/jsvensson/okgamut/internal/color"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const validConfig = `
grid {
  resolution = 128
  workers    = 4
}

estimate {
  samples = 10000
  seed    = -3
}

output {
  cusps   = "cusps.csv"
  outside = "outside.csv"
}

probe "red" {
  color = "#ff0000"
}

probe "teal" {
  color = oklch(70, 12, 190)
}
`

func hasDiagnostic(result *AnalysisResult, substr string) bool {
	for _, d := range result.Diagnostics {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestAnalyze_Valid(t *testing.T) {
	result := Analyze("test.hcl", validConfig)
	if len(result.Diagnostics) != 0 {
		for _, d := range result.Diagnostics {
			t.Errorf("unexpected diagnostic: %s", d.Message)
		}
	}

	if len(result.Colors) != 2 {
		t.Fatalf("expected 2 probe colors, got %d", len(result.Colors))
	}

	red := result.Colors[0]
	if red.Probe != "red" || red.Color != (color.Color{R: 255}) || red.IsCall {
		t.Errorf("red location = %+v", red)
	}
	// color = "#ff0000" on line 17 (0-based), value starts after "  color = ".
	wantStart := protocol.Position{Line: 17, Character: 10}
	if red.Range.Start != wantStart {
		t.Errorf("red range start = %+v, want %+v", red.Range.Start, wantStart)
	}

	teal := result.Colors[1]
	want := color.ScaledOklchToColor(color.Oklch{L: 70, C: 12, H: 190}, true)
	if teal.Probe != "teal" || teal.Color != want || !teal.IsCall {
		t.Errorf("teal location = %+v, want color %s", teal, want.Hex())
	}
}

func TestAnalyze_SyntaxError(t *testing.T) {
	result := Analyze("test.hcl", "grid {\n  resolution = \n")
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected syntax diagnostics")
	}
	if result.Diagnostics[0].Severity == nil || *result.Diagnostics[0].Severity != DiagError {
		t.Error("syntax diagnostics should be errors")
	}
}

func TestAnalyze_Problems(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unknown block", "palette {}\n", `unknown block "palette"`},
		{"top-level attribute", "resolution = 5\n", "unexpected top-level attribute"},
		{"duplicate block", "grid {}\ngrid {}\n", "duplicate grid block"},
		{"labelled settings", "grid \"x\" {}\n", "takes no label"},
		{"unknown attribute", "grid {\n  size = 3\n}\n", "unknown attribute grid.size"},
		{"wrong type", "grid {\n  resolution = \"big\"\n}\n", "must be a number"},
		{"fraction", "estimate {\n  samples = 1.5\n}\n", "whole number"},
		{"resolution one", "grid {\n  resolution = 1\n}\n", "grid.resolution must be in [2, 1024]"},
		{"resolution too large", "grid {\n  resolution = 4096\n}\n", "at most 1024"},
		{"negative workers", "grid {\n  workers = -2\n}\n", "grid.workers must not be negative"},
		{"output not string", "output {\n  cusps = 3\n}\n", "must be a string"},
		{"probe without label", "probe {\n  color = \"#000000\"\n}\n", "exactly one name label"},
		{"probe without color", "probe \"x\" {}\n", "missing required 'color'"},
		{"probe extra attribute", "probe \"x\" {\n  color = \"#000000\"\n  bold = true\n}\n", `unknown attribute "bold"`},
		{"probe bad hex", "probe \"x\" {\n  color = \"#12345\"\n}\n", "invalid hex color"},
		{"probe duplicate", "probe \"x\" {\n  color = \"#000000\"\n}\nprobe \"x\" {\n  color = \"#ffffff\"\n}\n", "defined more than once"},
		{"probe function error", "probe \"x\" {\n  color = lighten(\"nope\", 3)\n}\n", "invalid hex color"},
		{"probe unknown function", "probe \"x\" {\n  color = brighten(\"#000000\", 3)\n}\n", "brighten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze("test.hcl", tt.input)
			if !hasDiagnostic(result, tt.wantMsg) {
				var msgs []string
				for _, d := range result.Diagnostics {
					msgs = append(msgs, d.Message)
				}
				t.Errorf("expected diagnostic containing %q, got %q", tt.wantMsg, msgs)
			}
		})
	}
}

func TestAnalyze_ZeroMeansDefault(t *testing.T) {
	result := Analyze("test.hcl", "grid {\n  resolution = 0\n}\nestimate {\n  samples = 0\n}\n")
	if len(result.Diagnostics) != 0 {
		t.Errorf("zero settings should be accepted, got %d diagnostics", len(result.Diagnostics))
	}
}

func TestAnalyze_CollectsAllProblems(t *testing.T) {
	input := `grid {
  resolution = 1
  workers    = -1
}

probe "a" {
  color = "#zzzzzz"
}
`
	result := Analyze("test.hcl", input)
	if len(result.Diagnostics) != 3 {
		t.Errorf("expected 3 diagnostics, got %d", len(result.Diagnostics))
	}
	if len(result.Colors) != 0 {
		t.Errorf("invalid probe should not produce a color, got %d", len(result.Colors))
	}
}

func TestHCLPosToLSP(t *testing.T) {
	result := Analyze("test.hcl", "grid {\n  bogus = 1\n}\n")
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result.Diagnostics))
	}
	r := result.Diagnostics[0].Range
	if r.Start.Line != 1 || r.Start.Character != 2 {
		t.Errorf("diagnostic starts at %+v, want line 1 char 2", r.Start)
	}
}
