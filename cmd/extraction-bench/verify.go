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

var verifyCmd = &cobra.Command{
	Use:   "verify [report.txt|run.yaml]",
	Short: "Check a results report for arithmetic consistency",
	Long: `Verify parses a results report and checks that its printed numbers agree
with each other: total / count matches the average, each projection matches
average x count (within display-rounding drift), and minutes equal
seconds / 60. Unsatisfied checklist items are also surfaced.

A run record (.yaml) is rendered first, then verified. The exit status is
non-zero when findings exist.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := benchConfig()
	path := args[0]

	var text string
	if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
		run, err := harness.ReadRun(path)
		if err != nil {
			return err
		}
		projections, err := scale.Project(run.AverageSeconds, cfg.Report.Scales)
		if err != nil {
			return err
		}
		text = report.Render(run, projections)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading report %s: %w", path, err)
		}
		text = string(data)
	}

	parsed, err := report.Parse(text)
	if err != nil {
		return err
	}

	findings := report.Verify(parsed)
	if len(findings) == 0 {
		fmt.Fprintln(os.Stdout, "ok: report is arithmetically consistent")
		return nil
	}

	for _, f := range findings {
		fmt.Fprintf(os.Stdout, "finding: %s\n", f)
	}
	return fmt.Errorf("%d finding(s)", len(findings))
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
