package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jsvensson/okgamut/internal/config"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"
)

// topLevelBlocks are the valid top-level block names, in the order
// `okgamut init` writes them.
var topLevelBlocks = []string{"grid", "estimate", "output", "probe"}

// probeAttributes are the attributes a probe block accepts.
var probeAttributes = []string{"color"}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// complete produces completion items for the cursor position. Only the text
// before the cursor is considered.
func complete(content string, pos protocol.Position) []protocol.CompletionItem {
	lines := splitLines(content)
	if int(pos.Line) >= len(lines) {
		return nil
	}

	line := lines[pos.Line]
	charPos := min(int(pos.Character), len(line))
	textBeforeCursor := line[:charPos]
	before := append(slices.Clone(lines[:pos.Line]), textBeforeCursor)

	block := enclosingBlock(before)
	if isValuePosition(textBeforeCursor) {
		// Functions only make sense where a color is expected.
		if block == "probe" {
			return functionCompletions()
		}
		return nil
	}

	switch block {
	case "":
		return topLevelCompletions()
	case "probe":
		return probeCompletions(findDefinedAttributes(before))
	default:
		return settingCompletions(block, findDefinedAttributes(before))
	}
}

// isValuePosition returns true if the text before the cursor ends right after
// an "=" sign.
func isValuePosition(textBeforeCursor string) bool {
	trimmed := strings.TrimSpace(textBeforeCursor)
	eqIdx := strings.LastIndex(trimmed, "=")
	if eqIdx == -1 {
		return false
	}
	return strings.TrimSpace(trimmed[eqIdx+1:]) == ""
}

// enclosingBlock returns the type of the innermost block still open at the
// end of lines, or "" at the top level. Braces are tracked per line; the
// block name is the first word of the line that opens it.
func enclosingBlock(lines []string) string {
	var stack []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if opens := strings.Count(l, "{"); opens > 0 {
			if fields := strings.Fields(l); len(fields) > 0 {
				for range opens {
					stack = append(stack, fields[0])
				}
			}
		}
		for range strings.Count(l, "}") {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

// findDefinedAttributes returns the attribute names already assigned in the
// block that is open at the end of lines.
func findDefinedAttributes(lines []string) map[string]bool {
	defined := make(map[string]bool)

	start := 0
	depth := 0
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		depth += strings.Count(l, "}") - strings.Count(l, "{")
		if depth < 0 {
			start = i
			break
		}
	}

	for _, l := range lines[start:] {
		l = strings.TrimSpace(l)
		if eqIdx := strings.Index(l, "="); eqIdx > 0 {
			name := strings.TrimSpace(l[:eqIdx])
			if !strings.ContainsAny(name, " {") {
				defined[name] = true
			}
		}
	}
	return defined
}

func topLevelCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet
	kind := protocol.CompletionItemKindSnippet

	items := make([]protocol.CompletionItem, 0, len(topLevelBlocks))
	for _, name := range topLevelBlocks {
		snippet := name + " {\n  $0\n}"
		if name == "probe" {
			snippet = "probe \"${1:name}\" {\n  color = $0\n}"
		}
		items = append(items, protocol.CompletionItem{
			Label:            name,
			Kind:             &kind,
			InsertText:       &snippet,
			InsertTextFormat: &snippetFormat,
		})
	}
	return items
}

func probeCompletions(defined map[string]bool) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindProperty

	var items []protocol.CompletionItem
	for _, name := range probeAttributes {
		if !defined[name] {
			items = append(items, protocol.CompletionItem{
				Label:  name,
				Kind:   &kind,
				Detail: strPtr("hex string or color function"),
			})
		}
	}
	return items
}

// settingCompletions offers the attributes of a settings block that are not
// assigned yet. Unknown blocks get nothing.
func settingCompletions(block string, defined map[string]bool) []protocol.CompletionItem {
	rules, ok := settings[block]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(rules))
	for name := range rules {
		if !defined[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	kind := protocol.CompletionItemKindProperty
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: strPtr(rules[name].describe()),
		})
	}
	return items
}

func (r attrRule) describe() string {
	if r.kind == cty.String {
		return "string"
	}
	s := "whole number"
	if r.unsigned {
		s += ", not negative"
	}
	if r.max > 0 {
		s += fmt.Sprintf(", at most %d", r.max)
	}
	return s
}

// functionCompletions offers a snippet for every function config files can
// call, with the parameters as placeholders.
func functionCompletions() []protocol.CompletionItem {
	funcs := config.BuildEvalContext().Functions
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	slices.Sort(names)

	snippetFormat := protocol.InsertTextFormatSnippet
	kind := protocol.CompletionItemKindFunction

	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		f := funcs[name]
		params := make([]string, len(f.Params()))
		placeholders := make([]string, len(f.Params()))
		for i, p := range f.Params() {
			params[i] = p.Name
			placeholders[i] = fmt.Sprintf("${%d:%s}", i+1, p.Name)
		}

		snippet := name + "(" + strings.Join(placeholders, ", ") + ")"
		items = append(items, protocol.CompletionItem{
			Label:            name,
			Kind:             &kind,
			Detail:           strPtr(name + "(" + strings.Join(params, ", ") + ")"),
			Documentation:    f.Description(),
			InsertText:       &snippet,
			InsertTextFormat: &snippetFormat,
		})
	}
	return items
}

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return complete(content, params.Position), nil
}
