package lsp

import (
	"fmt"
	"strings"

	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/gamut"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// posInRange returns true if pos is within the range [r.Start, r.End).
// The end position is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// extractText extracts the source text at a given LSP range from document content.
func extractText(content string, r protocol.Range) string {
	lines := strings.Split(content, "\n")

	startLine := int(r.Start.Line)
	endLine := int(r.End.Line)
	if startLine >= len(lines) {
		return ""
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	clip := func(line string, ch uint32) int {
		return min(int(ch), len(line))
	}

	if startLine == endLine {
		line := lines[startLine]
		start, end := clip(line, r.Start.Character), clip(line, r.End.Character)
		if start > end {
			return ""
		}
		return line[start:end]
	}

	parts := make([]string, 0, endLine-startLine+1)
	parts = append(parts, lines[startLine][clip(lines[startLine], r.Start.Character):])
	parts = append(parts, lines[startLine+1:endLine]...)
	parts = append(parts, lines[endLine][:clip(lines[endLine], r.End.Character)])
	return strings.Join(parts, "\n")
}

// oklchCall renders c as an oklch() call with two decimals.
func oklchCall(c color.Color) string {
	lch := color.ScaledOklch(c, true)
	return fmt.Sprintf("oklch(%.2f, %.2f, %.2f)", lch.L, lch.C, lch.H)
}

// hover describes the probe color under pos: its hex value, corrected Oklch
// coordinates and hue bucket. Returns nil if no color is found at the position.
func hover(result *AnalysisResult, pos protocol.Position) *protocol.Hover {
	if result == nil {
		return nil
	}

	for _, cl := range result.Colors {
		if !posInRange(pos, cl.Range) {
			continue
		}

		lch := color.ScaledOklch(cl.Color, true)
		md := fmt.Sprintf("**%s**\n\n`%s` · `%s`\n\nL %.2f · C %.2f · H %.2f (hue bucket %d)",
			cl.Probe, cl.Color.Hex(), oklchCall(cl.Color), lch.L, lch.C, lch.H, gamut.HueBucket(lch.H))

		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: md,
			},
			Range: &cl.Range,
		}
	}

	return nil
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return hover(s.docs.Result(string(params.TextDocument.URI)), params.Position), nil
}
