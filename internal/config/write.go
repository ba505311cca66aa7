package config

import (
	"fmt"
	"io"
	"regexp"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

var (
	runsOfBlankLines   = regexp.MustCompile(`\n{3,}`)
	blankAfterOpening  = regexp.MustCompile(`\{\n\s*\n`)
	blankBeforeClosing = regexp.MustCompile(`\n\s*\n(\s*\})`)
)

// Format returns src in canonical HCL style with at most one blank line
// between items and none just inside braces. It works on partial input.
func Format(src []byte) []byte {
	out := hclwrite.Format(src)
	out = runsOfBlankLines.ReplaceAll(out, []byte("\n\n"))
	out = blankAfterOpening.ReplaceAll(out, []byte("{\n"))
	return blankBeforeClosing.ReplaceAll(out, []byte("\n${1}"))
}

// Write encodes cfg as a formatted HCL config file.
func Write(w io.Writer, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	gohcl.EncodeIntoBody(&cfg.Grid, body.AppendNewBlock("grid", nil).Body())
	body.AppendNewline()
	gohcl.EncodeIntoBody(&cfg.Estimate, body.AppendNewBlock("estimate", nil).Body())
	body.AppendNewline()
	gohcl.EncodeIntoBody(&cfg.Output, body.AppendNewBlock("output", nil).Body())

	for _, p := range cfg.Probes {
		body.AppendNewline()
		body.AppendBlock(gohcl.EncodeAsBlock(&probeBlock{Name: p.Name, Color: p.Color.Hex()}, "probe"))
	}

	if _, err := w.Write(Format(f.Bytes())); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
