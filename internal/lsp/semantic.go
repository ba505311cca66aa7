package lsp

import (
	"cmp"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"
)

// Semantic token types, indexed by position.
var semanticTokenTypes = []string{
	"keyword",  // 0: block types (grid, estimate, output, probe)
	"property", // 1: attribute names
	"variable", // 2: probe names
	"string",   // 3: string literals
	"function", // 4: oklch(), oklab(), lightness(), lighten()
	"number",   // 5: numeric literals
}

// Semantic token modifiers (bit flags).
var semanticTokenModifiers = []string{
	"declaration", // bit 0
}

const (
	tokenKeyword uint32 = iota
	tokenProperty
	tokenVariable
	tokenString
	tokenFunction
	tokenNumber
)

const modDeclaration uint32 = 1

// SemanticToken is a single token with its metadata.
type SemanticToken struct {
	Line      uint32 // 0-based line number
	StartChar uint32 // 0-based character offset
	Length    uint32
	Type      uint32 // index into semanticTokenTypes
	Modifiers uint32 // bit flags
}

func tokenAt(r hcl.Range, typ, mods uint32) (SemanticToken, bool) {
	// Tokens may not span lines.
	if r.Start.Line != r.End.Line || r.End.Column <= r.Start.Column {
		return SemanticToken{}, false
	}
	return SemanticToken{
		Line:      uint32(r.Start.Line - 1),
		StartChar: uint32(r.Start.Column - 1),
		Length:    uint32(r.End.Column - r.Start.Column),
		Type:      typ,
		Modifiers: mods,
	}, true
}

// encodeTokens converts tokens to the LSP wire format: five integers per
// token, line and start relative to the previous token.
func encodeTokens(tokens []SemanticToken) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	slices.SortFunc(tokens, func(a, b SemanticToken) int {
		if a.Line != b.Line {
			return cmp.Compare(a.Line, b.Line)
		}
		return cmp.Compare(a.StartChar, b.StartChar)
	})

	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.StartChar
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevChar
		}
		data = append(data, deltaLine, deltaStart, tok.Length, tok.Type, tok.Modifiers)
		prevLine = tok.Line
		prevChar = tok.StartChar
	}
	return data
}

// semanticTokensFull tokenizes a whole config file. Files that do not parse
// get no tokens.
func semanticTokensFull(content string) []uint32 {
	file, diags := hclsyntax.ParseConfig([]byte(content), "", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return []uint32{}
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return []uint32{}
	}
	return encodeTokens(bodyTokens(body, nil))
}

func bodyTokens(body *hclsyntax.Body, tokens []SemanticToken) []SemanticToken {
	add := func(r hcl.Range, typ, mods uint32) {
		if tok, ok := tokenAt(r, typ, mods); ok {
			tokens = append(tokens, tok)
		}
	}

	for _, block := range body.Blocks {
		add(block.TypeRange, tokenKeyword, 0)
		for _, r := range block.LabelRanges {
			add(r, tokenVariable, modDeclaration)
		}
		tokens = bodyTokens(block.Body, tokens)
	}

	for _, attr := range body.Attributes {
		add(attr.NameRange, tokenProperty, modDeclaration)
		tokens = exprTokens(attr.Expr, tokens)
	}
	return tokens
}

func exprTokens(expr hclsyntax.Expression, tokens []SemanticToken) []SemanticToken {
	add := func(r hcl.Range, typ uint32) {
		if tok, ok := tokenAt(r, typ, 0); ok {
			tokens = append(tokens, tok)
		}
	}

	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		switch e.Val.Type() {
		case cty.Number:
			add(e.SrcRange, tokenNumber)
		case cty.String:
			add(e.SrcRange, tokenString)
		}
	case *hclsyntax.TemplateExpr:
		if e.IsStringLiteral() {
			add(e.SrcRange, tokenString)
		}
	case *hclsyntax.UnaryOpExpr:
		if lit, ok := e.Val.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.Number {
			add(e.SrcRange, tokenNumber)
		} else {
			tokens = exprTokens(e.Val, tokens)
		}
	case *hclsyntax.FunctionCallExpr:
		add(e.NameRange, tokenFunction)
		for _, arg := range e.Args {
			tokens = exprTokens(arg, tokens)
		}
	}
	return tokens
}

func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return &protocol.SemanticTokens{Data: semanticTokensFull(content)}, nil
}
