package lsp

import (
	"strings"

	"github.com/jsvensson/okgamut/internal/config"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// formatEdits returns a single edit replacing the whole document with its
// formatted form, or no edits when it is already formatted.
func formatEdits(content string) []protocol.TextEdit {
	formatted := string(config.Format([]byte(content)))
	if formatted == content {
		return []protocol.TextEdit{}
	}

	lines := strings.Split(content, "\n")
	last := lines[len(lines)-1]
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: uint32(len(lines) - 1), Character: uint32(len(last))},
		},
		NewText: formatted,
	}}
}

// textDocumentFormatting handles textDocument/formatting requests.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return formatEdits(content), nil
}
