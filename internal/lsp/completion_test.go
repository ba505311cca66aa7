package lsp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pos     protocol.Position
		want    []string
	}{
		{
			name:    "empty file",
			content: "",
			pos:     protocol.Position{Line: 0, Character: 0},
			want:    []string{"grid", "estimate", "output", "probe"},
		},
		{
			name:    "after a one-line block",
			content: "grid { resolution = 64 }\n",
			pos:     protocol.Position{Line: 1, Character: 0},
			want:    []string{"grid", "estimate", "output", "probe"},
		},
		{
			name:    "empty grid block",
			content: "grid {\n  \n}\n",
			pos:     protocol.Position{Line: 1, Character: 2},
			want:    []string{"resolution", "workers"},
		},
		{
			name:    "grid block skips assigned attributes",
			content: "grid {\n  resolution = 64\n  \n}\n",
			pos:     protocol.Position{Line: 2, Character: 2},
			want:    []string{"workers"},
		},
		{
			name:    "assignments in other blocks do not count",
			content: "estimate {\n  seed = 1\n}\noutput {\n  cusps = \"c.csv\"\n  \n}\n",
			pos:     protocol.Position{Line: 5, Character: 2},
			want:    []string{"outside"},
		},
		{
			name:    "estimate block",
			content: "estimate {\n  \n}\n",
			pos:     protocol.Position{Line: 1, Character: 2},
			want:    []string{"samples", "seed"},
		},
		{
			name:    "probe block",
			content: "probe \"a\" {\n  \n}\n",
			pos:     protocol.Position{Line: 1, Character: 2},
			want:    []string{"color"},
		},
		{
			name:    "probe value",
			content: "probe \"a\" {\n  color = \n}\n",
			pos:     protocol.Position{Line: 1, Character: 10},
			want:    []string{"lighten", "lightness", "oklab", "oklch"},
		},
		{
			name:    "settings value",
			content: "grid {\n  workers = \n}\n",
			pos:     protocol.Position{Line: 1, Character: 12},
			want:    []string{},
		},
		{
			name:    "unknown block",
			content: "palette {\n  \n}\n",
			pos:     protocol.Position{Line: 1, Character: 2},
			want:    []string{},
		},
		{
			name:    "line past the end",
			content: "grid {}",
			pos:     protocol.Position{Line: 4, Character: 0},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(complete(tt.content, tt.pos))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("completion labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComplete_ProbeColorAssigned(t *testing.T) {
	content := "probe \"a\" {\n  color = \"#000000\"\n  \n}\n"
	if got := complete(content, protocol.Position{Line: 2, Character: 2}); len(got) != 0 {
		t.Errorf("expected no completions, got %v", labels(got))
	}
}

func TestFunctionCompletions_Snippets(t *testing.T) {
	items := functionCompletions()
	byName := make(map[string]protocol.CompletionItem, len(items))
	for _, item := range items {
		byName[item.Label] = item
	}

	tests := []struct {
		name    string
		snippet string
		detail  string
	}{
		{"oklch", "oklch(${1:lightness}, ${2:chroma}, ${3:hue})", "oklch(lightness, chroma, hue)"},
		{"oklab", "oklab(${1:lightness}, ${2:a}, ${3:b})", "oklab(lightness, a, b)"},
		{"lighten", "lighten(${1:color}, ${2:amount})", "lighten(color, amount)"},
		{"lightness", "lightness(${1:color}, ${2:lightness})", "lightness(color, lightness)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := byName[tt.name]
			if !ok {
				t.Fatalf("no completion for %s", tt.name)
			}
			if item.InsertText == nil || *item.InsertText != tt.snippet {
				t.Errorf("InsertText = %v, want %q", item.InsertText, tt.snippet)
			}
			if item.Detail == nil || *item.Detail != tt.detail {
				t.Errorf("Detail = %v, want %q", item.Detail, tt.detail)
			}
			if doc, _ := item.Documentation.(string); doc == "" {
				t.Error("missing documentation")
			}
		})
	}
}

func TestSettingCompletions_Detail(t *testing.T) {
	items := settingCompletions("grid", nil)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := *items[0].Detail; got != "whole number, not negative, at most 1024" {
		t.Errorf("resolution detail = %q", got)
	}
	if got := *settingCompletions("output", nil)[0].Detail; got != "string" {
		t.Errorf("cusps detail = %q", got)
	}
}
