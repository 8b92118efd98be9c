// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the extraction-bench CLI: a timing
// harness for an external interview-transcript extraction pipeline. The
// pipeline stays opaque; the CLI times it, projects the measurements to
// larger corpora, verifies result reports, and keeps a run history.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/extraction-bench/internal/scale"
	"github.com/pdiddy/extraction-bench/internal/secrets"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the extraction-bench CLI.
var rootCmd = &cobra.Command{
	Use:   "extraction-bench",
	Short: "Benchmark harness for the transcript extraction pipeline",
	Long: `extraction-bench times an external extraction pipeline over a corpus of
interview transcripts and manages the resulting measurements.

Each operation is a subcommand: run times the pipeline and records a run,
report renders the results log, verify checks a log's arithmetic, project
extrapolates to larger corpora, store manages the run history, and publish
pushes a run to a shared results endpoint.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./extraction-bench.yaml or ~/.config/extraction-bench/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("extraction-bench")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "extraction-bench"))
		}
	}

	viper.SetEnvPrefix("EXTRACTION_BENCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// benchConfig assembles the stage configurations from viper, applying the
// project-layout defaults.
func benchConfig() types.BenchConfig {
	cfg := types.BenchConfig{
		Harness: types.HarnessConfig{
			Command:        viper.GetStringSlice("harness.command"),
			Phases:         viper.GetStringSlice("harness.phases"),
			TranscriptsDir: viper.GetString("harness.transcripts_dir"),
			OutputDir:      viper.GetString("harness.output_dir"),
			Artifacts:      viper.GetStringSlice("harness.artifacts"),
			MaxRetries:     viper.GetInt("harness.max_retries"),
			RunsDir:        viper.GetString("harness.runs_dir"),
		},
		Report: types.ReportConfig{
			Scales:     viper.GetIntSlice("report.scales"),
			ReportsDir: viper.GetString("report.reports_dir"),
		},
		Target: types.TargetConfig{
			MinSpeedup: viper.GetFloat64("target.min_speedup"),
			MaxSpeedup: viper.GetFloat64("target.max_speedup"),
		},
		Store: types.StoreConfig{
			ResultsDir: viper.GetString("store.results_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Publish: types.PublishConfig{
			Endpoint:   viper.GetString("publish.endpoint"),
			Token:      viper.GetString("publish.token"),
			MaxRetries: viper.GetInt("publish.max_retries"),
		},
	}

	if cfg.Harness.TranscriptsDir == "" {
		cfg.Harness.TranscriptsDir = "transcripts"
	}
	if cfg.Harness.OutputDir == "" {
		cfg.Harness.OutputDir = "output"
	}
	if cfg.Harness.RunsDir == "" {
		cfg.Harness.RunsDir = filepath.Join("results", "runs")
	}
	if len(cfg.Report.Scales) == 0 {
		cfg.Report.Scales = scale.DefaultScales
	}
	if cfg.Report.ReportsDir == "" {
		cfg.Report.ReportsDir = filepath.Join("results", "reports")
	}
	if cfg.Store.ResultsDir == "" {
		cfg.Store.ResultsDir = "results"
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
