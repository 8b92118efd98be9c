// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/extraction-bench/internal/harness"
	"github.com/pdiddy/extraction-bench/internal/report"
	"github.com/pdiddy/extraction-bench/internal/scale"
)

var reportCmd = &cobra.Command{
	Use:   "report [run.yaml]",
	Short: "Render the results report for a recorded run",
	Long: `Report reads a run record and renders the canonical results log: measured
totals, the per-transcript average, linear projections at the configured
scales, artifact states, and the validation checklist.

With --write the report is also saved under results/reports/.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := benchConfig()

	run, err := harness.ReadRun(args[0])
	if err != nil {
		return err
	}

	projections, err := scale.Project(run.AverageSeconds, cfg.Report.Scales)
	if err != nil {
		return err
	}

	text := report.Render(run, projections)
	fmt.Fprint(os.Stdout, text)

	write, _ := cmd.Flags().GetBool("write")
	if write {
		if err := os.MkdirAll(cfg.Report.ReportsDir, 0o755); err != nil {
			return fmt.Errorf("creating reports directory: %w", err)
		}
		path := filepath.Join(cfg.Report.ReportsDir, run.ID+".txt")
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	}

	return nil
}

func init() {
	reportCmd.Flags().Bool("write", false, "also save the report under results/reports/")

	rootCmd.AddCommand(reportCmd)
}
