package lsp

import (
	"strings"

	"github.com/jsvensson/okgamut/internal/color"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// colorToLSP converts a color.Color (uint8 RGB) to a protocol.Color (float32 0.0-1.0).
func colorToLSP(c color.Color) protocol.Color {
	return protocol.Color{
		Red:   float32(c.R) / 255.0,
		Green: float32(c.G) / 255.0,
		Blue:  float32(c.B) / 255.0,
		Alpha: 1.0,
	}
}

// colorFromLSP quantizes a picker color back to 8 bits.
func colorFromLSP(c protocol.Color) color.Color {
	return color.RGB{R: float64(c.Red), G: float64(c.Green), B: float64(c.Blue)}.Quantize()
}

// documentColors converts the probe color locations into LSP ColorInformation items.
func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	if result == nil {
		return []protocol.ColorInformation{}
	}

	infos := make([]protocol.ColorInformation, 0, len(result.Colors))
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{
			Range: cl.Range,
			Color: colorToLSP(cl.Color),
		})
	}
	return infos
}

// colorPresentation offers two ways to write a picked color: a hex literal
// and the equivalent oklch() call. Existing function calls are only ever
// replaced by another call so the probe keeps its Oklch form.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	c := colorFromLSP(params.Color)
	hexStr := c.Hex()
	call := oklchCall(c)

	text := extractText(content, params.Range)

	edit := func(label, newText string) protocol.ColorPresentation {
		return protocol.ColorPresentation{
			Label:    label,
			TextEdit: &protocol.TextEdit{Range: params.Range, NewText: newText},
		}
	}

	switch {
	case strings.HasPrefix(text, "oklch(") || strings.HasPrefix(text, "oklab(") ||
		strings.HasPrefix(text, "lightness(") || strings.HasPrefix(text, "lighten("):
		return []protocol.ColorPresentation{edit(call, call)}
	case strings.HasPrefix(text, "\""):
		quoted := "\"" + hexStr + "\""
		return []protocol.ColorPresentation{edit(hexStr, quoted), edit(call, call)}
	}
	return []protocol.ColorPresentation{}
}

// textDocumentDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return documentColors(s.docs.Result(string(params.TextDocument.URI))), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(content, params), nil
}
