package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/gamut"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("okgamut.config")

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "okgamut.hcl"

// Defaults applied to zero values.
const (
	DefaultResolution = 256
	DefaultSamples    = 1_000_000
	DefaultCuspsPath  = "cusps.csv"
	DefaultOutside    = "outside.csv"
)

// Config is the fully-resolved run configuration.
type Config struct {
	Grid     Grid
	Estimate Estimate
	Output   Output
	Probes   []Probe
}

// Grid controls sampling of the sRGB cube.
type Grid struct {
	Resolution int `hcl:"resolution,optional"`
	Workers    int `hcl:"workers,optional"` // 0 uses every CPU
}

// Estimate controls the Monte Carlo error estimate.
type Estimate struct {
	Samples int   `hcl:"samples,optional"`
	Seed    int64 `hcl:"seed,optional"`
}

// estimateBlock tells an absent seed from seed = 0.
type estimateBlock struct {
	Samples int    `hcl:"samples,optional"`
	Seed    *int64 `hcl:"seed,optional"`
}

// Output names the CSV files written by the pipeline.
type Output struct {
	Cusps   string `hcl:"cusps,optional"`
	Outside string `hcl:"outside,optional"`
}

// Probe is a named color checked against the gamut model.
type Probe struct {
	Name  string
	Color color.Color
}

type probeBlock struct {
	Name  string `hcl:"name,label"`
	Color string `hcl:"color"`
}

type file struct {
	Grid     *Grid          `hcl:"grid,block"`
	Estimate *estimateBlock `hcl:"estimate,block"`
	Output   *Output        `hcl:"output,block"`
	Probes   []probeBlock   `hcl:"probe,block"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{Estimate: Estimate{Seed: gamut.DefaultSeed}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and decodes an HCL config file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL config source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, BuildEvalContext(), &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding config: %s", diags.Error())
	}

	cfg := &Config{Estimate: Estimate{Seed: gamut.DefaultSeed}}
	if raw.Grid != nil {
		cfg.Grid = *raw.Grid
	}
	if raw.Estimate != nil {
		cfg.Estimate.Samples = raw.Estimate.Samples
		if raw.Estimate.Seed != nil {
			cfg.Estimate.Seed = *raw.Estimate.Seed
		}
	}
	if raw.Output != nil {
		cfg.Output = *raw.Output
	}

	seen := make(map[string]bool, len(raw.Probes))
	for _, p := range raw.Probes {
		if seen[p.Name] {
			return nil, fmt.Errorf("probe %q defined more than once", p.Name)
		}
		seen[p.Name] = true

		c, err := color.ParseHex(p.Color)
		if err != nil {
			return nil, fmt.Errorf("probe %q: %w", p.Name, err)
		}
		cfg.Probes = append(cfg.Probes, Probe{Name: p.Name, Color: c})
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("loaded %s: grid %d, %d samples, %d probes",
		filename, cfg.Grid.Resolution, cfg.Estimate.Samples, len(cfg.Probes))
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Grid.Resolution == 0 {
		c.Grid.Resolution = DefaultResolution
	}
	if c.Estimate.Samples == 0 {
		c.Estimate.Samples = DefaultSamples
	}
	if c.Output.Cusps == "" {
		c.Output.Cusps = DefaultCuspsPath
	}
	if c.Output.Outside == "" {
		c.Output.Outside = DefaultOutside
	}
}

// Validate checks value ranges. It is called by Parse and should be called
// again after flags override file values.
func (c *Config) Validate() error {
	if _, err := gamut.NewGrid(c.Grid.Resolution); err != nil {
		return fmt.Errorf("grid.resolution: %w", err)
	}
	if c.Grid.Workers < 0 {
		return fmt.Errorf("grid.workers must not be negative, got %d", c.Grid.Workers)
	}
	if c.Estimate.Samples < 1 {
		return fmt.Errorf("estimate.samples must be at least 1, got %d", c.Estimate.Samples)
	}
	return nil
}
