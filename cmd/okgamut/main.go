package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jsvensson/okgamut"
	"github.com/jsvensson/okgamut/internal/color"
	"github.com/jsvensson/okgamut/internal/config"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var (
	flagConfig  string
	flagVerbose int
	flagLog     string
	flagGrid    int
	flagWorkers int
	flagOut     string
	flagSamples int
	flagSeed    int64
	flagCusps   string
	flagForce   bool
	flagCheck   bool
	version     = "dev" // Injected at build time via ldflags
)

var rootCmd = &cobra.Command{
	Use:     "okgamut",
	Short:   "Model the sRGB gamut in Oklch and measure the triangle approximation",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var path *string
		if flagLog != "" {
			path = &flagLog
		}
		commonlog.Configure(flagVerbose, path)
	},
	SilenceUsage: true,
}

var cuspsCmd = &cobra.Command{
	Use:   "cusps",
	Short: "Extract the most saturated color of every hue and write the cusp table",
	Args:  cobra.NoArgs,
	RunE:  runCusps,
}

var outsideCmd = &cobra.Command{
	Use:   "outside",
	Short: "Write the sampled colors that fall outside the triangle model",
	Args:  cobra.NoArgs,
	RunE:  runOutside,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate how much of the triangle model lies outside sRGB",
	Long: "Draw points uniformly inside the triangle model and report the fraction that " +
		"falls outside the sRGB gamut. Use --cusps to reuse a table written by the cusps command.",
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

var checkCmd = &cobra.Command{
	Use:   "check [hex...]",
	Short: "Classify colors against the triangle model",
	Long:  "Classify the given hex colors, or the probes from the config file when none are given.",
	RunE:  runCheck,
}

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format okgamut config files",
	Long:  "Format one or more config files in-place. Prints the name of each file that was modified.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagGrid, "grid", 0, "samples per sRGB channel (default from config)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel workers, 0 for one per CPU (default from config)")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "path to config HCL file")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "", "write logs to this file instead of stderr")

	for _, cmd := range []*cobra.Command{cuspsCmd, outsideCmd, estimateCmd, checkCmd} {
		addGridFlags(cmd)
	}
	cuspsCmd.Flags().StringVar(&flagOut, "out", "", "output CSV path (default from config)")
	outsideCmd.Flags().StringVar(&flagOut, "out", "", "output CSV path (default from config)")
	estimateCmd.Flags().IntVar(&flagSamples, "samples", 0, "number of points to draw (default from config)")
	estimateCmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (default from config)")
	estimateCmd.Flags().StringVar(&flagCusps, "cusps", "", "read the cusp table from this CSV instead of sampling")
	initCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "overwrite an existing file")
	fmtCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "check if files are formatted (do not write changes)")

	rootCmd.AddCommand(cuspsCmd, outsideCmd, estimateCmd, checkCmd, initCmd, fmtCmd, versionCmd)
}

// loadConfig reads the config file and applies flag overrides. A missing
// file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("grid") {
		cfg.Grid.Resolution = flagGrid
	}
	if flags.Changed("workers") {
		cfg.Grid.Workers = flagWorkers
	}
	if flags.Changed("samples") {
		cfg.Estimate.Samples = flagSamples
	}
	if flags.Changed("seed") {
		cfg.Estimate.Seed = flagSeed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func outPath(cmd *cobra.Command, fallback string) string {
	if cmd.Flags().Changed("out") {
		return flagOut
	}
	return fallback
}

func runCusps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := outPath(cmd, cfg.Output.Cusps)
	n, err := okgamut.New(cfg).WriteCusps(path)
	if err != nil {
		return fmt.Errorf("writing cusps: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cusps to %s\n", n, path)
	return nil
}

func runOutside(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := outPath(cmd, cfg.Output.Outside)
	n, err := okgamut.New(cfg).WriteOutside(path)
	if err != nil {
		return fmt.Errorf("writing outside colors: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d colors outside the triangle model to %s\n", n, path)
	return nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	e := okgamut.New(cfg)
	if flagCusps != "" {
		if err := e.LoadCusps(flagCusps); err != nil {
			return err
		}
	}

	est, err := e.Estimate()
	if err != nil {
		return fmt.Errorf("estimating: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d samples outside sRGB (%.4f%%, seed %d)\n",
		est.Bad, est.Samples, 100*est.Fraction(), est.Seed)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	probes := cfg.Probes
	if len(args) > 0 {
		probes = make([]config.Probe, len(args))
		for i, arg := range args {
			c, err := color.ParseHex(arg)
			if err != nil {
				return err
			}
			probes[i] = config.Probe{Name: c.Hex(), Color: c}
		}
	}
	if len(probes) == 0 {
		return fmt.Errorf("no colors to check: pass hex colors or add probe blocks to %s", flagConfig)
	}

	results, err := okgamut.New(cfg).Check(probes)
	if err != nil {
		return fmt.Errorf("checking: %w", err)
	}

	w := cmd.OutOrStdout()
	for _, r := range results {
		v := r.Verdict
		status := "inside"
		if v.Outside() {
			status = fmt.Sprintf("outside by %.2f", v.Excess)
		}
		fmt.Fprintf(w, "%-12s %s  L %6.2f  C %6.2f  H %6.2f  hue %3d  L_r %6.2f in [%6.2f, %6.2f]  %s\n",
			r.Name, r.Color.Hex(), r.Oklch.L, r.Oklch.C, r.Oklch.H, v.Bucket, v.L, v.LLower, v.LUpper, status)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath
	if len(args) == 1 {
		path = args[0]
	}

	if !flagForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var buf bytes.Buffer
	if err := config.Write(&buf, config.Default()); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	hasErrors := false
	needsFormatting := false

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		formatted := config.Format(data)
		if bytes.Equal(formatted, data) {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		needsFormatting = true

		if !flagCheck {
			if err := os.WriteFile(path, formatted, 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", path, err)
				hasErrors = true
			}
		}
	}

	if hasErrors || (flagCheck && needsFormatting) {
		os.Exit(1)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
