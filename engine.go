// Package okgamut models the sRGB gamut in Oklch: it extracts the per-hue
// cusps, classifies colors against the triangle approximation built from
// them and estimates how much that approximation overshoots the real gamut.
package okgamut

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/config"
	"github.com/jsvensson/okgamut/internal/export"
	"github.com/jsvensson/okgamut/internal/gamut"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("okgamut")

// Engine runs the gamut pipeline for one configuration. The cusp table is
// computed on first use and reused by later stages. An Engine is not safe for
// concurrent use.
type Engine struct {
	Config *config.Config

	cusps *gamut.CuspTable
	model *gamut.Model
}

// New returns an engine for cfg. A nil cfg uses the defaults.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{Config: cfg}
}

func (e *Engine) grid() (gamut.Grid, error) {
	return gamut.NewGrid(e.Config.Grid.Resolution)
}

// Cusps returns the cusp table, sampling the grid if no table is loaded yet.
func (e *Engine) Cusps() (*gamut.CuspTable, error) {
	if e.cusps != nil {
		return e.cusps, nil
	}
	g, err := e.grid()
	if err != nil {
		return nil, err
	}
	t, err := gamut.ExtractCusps(g, e.Config.Grid.Workers)
	if err != nil {
		return nil, fmt.Errorf("extracting cusps: %w", err)
	}
	e.UseCusps(t)
	return t, nil
}

// UseCusps makes the engine use t instead of sampling its own table.
func (e *Engine) UseCusps(t *gamut.CuspTable) {
	e.cusps = t
	e.model = nil
}

// LoadCusps reads a cusp table written by WriteCusps and uses it.
func (e *Engine) LoadCusps(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening cusp table: %w", err)
	}
	defer f.Close()

	t, err := export.ReadCusps(f)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.Infof("loaded %d cusps from %s", t.Len(), path)
	e.UseCusps(t)
	return nil
}

// Model returns the triangle model over the engine's cusps.
func (e *Engine) Model() (*gamut.Model, error) {
	if e.model != nil {
		return e.model, nil
	}
	t, err := e.Cusps()
	if err != nil {
		return nil, err
	}
	m, err := gamut.NewModel(t)
	if err != nil {
		return nil, fmt.Errorf("building triangle model: %w", err)
	}
	e.model = m
	return m, nil
}

// Outside classifies the sample grid and returns the colors the triangle
// model misses, worst first.
func (e *Engine) Outside() ([]gamut.Outside, error) {
	m, err := e.Model()
	if err != nil {
		return nil, err
	}
	g, err := e.grid()
	if err != nil {
		return nil, err
	}
	return m.ClassifyGrid(g, e.Config.Grid.Workers)
}

// Estimate runs the Monte Carlo estimate of the model's false-positive rate.
func (e *Engine) Estimate() (gamut.Estimate, error) {
	t, err := e.Cusps()
	if err != nil {
		return gamut.Estimate{}, err
	}
	est := e.Config.Estimate
	return gamut.EstimateError(t, est.Samples, est.Seed, e.Config.Grid.Workers)
}

// Result is the classification of one probe color.
type Result struct {
	Name    string
	Color   color.Color
	Oklch   color.Oklch // corrected lightness, [0, 100] scale
	Sample  gamut.Sample
	Verdict gamut.Verdict
}

// Check classifies each probe against the triangle model.
func (e *Engine) Check(probes []config.Probe) ([]Result, error) {
	m, err := e.Model()
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(probes))
	for i, p := range probes {
		s, v := m.ClassifyColor(p.Color)
		results[i] = Result{
			Name:    p.Name,
			Color:   p.Color,
			Oklch:   color.ScaledOklch(p.Color, true),
			Sample:  s,
			Verdict: v,
		}
	}
	return results, nil
}

// WriteCusps writes the cusp table to path, creating parent directories.
func (e *Engine) WriteCusps(path string) (int, error) {
	t, err := e.Cusps()
	if err != nil {
		return 0, err
	}
	cusps := t.All()
	err = writeFile(path, func(w io.Writer) error {
		return export.WriteCusps(w, cusps)
	})
	return len(cusps), err
}

// WriteOutside classifies the grid and writes the outside table to path,
// creating parent directories.
func (e *Engine) WriteOutside(path string) (int, error) {
	records, err := e.Outside()
	if err != nil {
		return 0, err
	}
	err = writeFile(path, func(w io.Writer) error {
		return export.WriteOutside(w, records)
	})
	return len(records), err
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	log.Infof("wrote %s", path)
	return nil
}
