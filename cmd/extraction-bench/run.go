// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/extraction-bench/internal/checks"
	"github.com/pdiddy/extraction-bench/internal/harness"
	"github.com/pdiddy/extraction-bench/internal/report"
	"github.com/pdiddy/extraction-bench/internal/scale"
	"github.com/pdiddy/extraction-bench/internal/transcripts"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Time the pipeline over a transcript corpus and record a run",
	Long: `Run times the configured pipeline command once per phase per transcript,
validates the expected output artifacts, evaluates the checklist, writes the
run record to results/runs/, and prints the results report.

The pipeline command is an argv template with {phase}, {transcript}, and
{output} placeholders, e.g.:

  harness:
    command: ["./pipeline", "--phase", "{phase}", "--input", "{transcript}", "--out", "{output}"]`,
	RunE: runBenchmark,
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg := benchConfig()

	label, _ := cmd.Flags().GetString("label")
	if dir, _ := cmd.Flags().GetString("transcripts-dir"); dir != "" {
		cfg.Harness.TranscriptsDir = dir
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Harness.OutputDir = dir
	}
	if phases, _ := cmd.Flags().GetStringSlice("phase"); len(phases) > 0 {
		cfg.Harness.Phases = phases
	}
	notes, _ := cmd.Flags().GetString("notes")
	baselineAvg, _ := cmd.Flags().GetFloat64("baseline-average")

	runner, err := harness.NewCommandRunner(cfg.Harness)
	if err != nil {
		return err
	}

	corpus, err := transcripts.List(cfg.Harness.TranscriptsDir)
	if err != nil {
		return err
	}

	run, summary, err := harness.Benchmark(context.Background(), runner, cfg.Harness, label, corpus, os.Stdout)
	if err != nil {
		return err
	}
	run.Notes = notes

	target := checks.NewTarget(cfg.Target)
	run.Checklist = checks.Evaluate(run, target, baselineAvg)

	path, err := harness.WriteRun(cfg.Harness.RunsDir, run)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nrun written to %s\n\n", path)

	projections, err := scale.Project(run.AverageSeconds, cfg.Report.Scales)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, report.Render(run, projections))

	if summary.HasFailures() {
		return fmt.Errorf("%d transcript(s) failed", summary.Failed)
	}
	if !checks.AllSatisfied(run.Checklist) {
		return fmt.Errorf("checklist has unsatisfied items")
	}
	return nil
}

func init() {
	runCmd.Flags().String("label", "baseline", "label for the run (baseline, opt-...)")
	runCmd.Flags().String("transcripts-dir", "", "directory holding the transcript corpus")
	runCmd.Flags().String("output-dir", "", "directory the pipeline writes artifacts to")
	runCmd.Flags().StringSlice("phase", nil, "pipeline phase(s) to time")
	runCmd.Flags().String("notes", "", "free-form notes stored with the run")
	runCmd.Flags().Float64("baseline-average", 0, "baseline per-transcript average for the speedup checklist item (0 = none)")

	rootCmd.AddCommand(runCmd)
}
