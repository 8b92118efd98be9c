// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/extraction-bench/internal/harness"
	"github.com/pdiddy/extraction-bench/internal/scale"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Extrapolate a per-transcript average to larger corpora",
	Long: `Project prints linear projections of a per-transcript average at the
requested corpus sizes. The average comes from --run (a recorded run's
full-precision average) or directly from --average.`,
	RunE: runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	cfg := benchConfig()

	counts, _ := cmd.Flags().GetIntSlice("counts")
	if len(counts) == 0 {
		counts = cfg.Report.Scales
	}

	avg, _ := cmd.Flags().GetFloat64("average")
	runPath, _ := cmd.Flags().GetString("run")

	switch {
	case runPath != "" && avg > 0:
		return fmt.Errorf("use either --run or --average, not both")
	case runPath != "":
		run, err := harness.ReadRun(runPath)
		if err != nil {
			return err
		}
		avg = run.AverageSeconds
	case avg <= 0:
		return fmt.Errorf("an average is required: provide --run or --average")
	}

	projections, err := scale.Project(avg, counts)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "average per transcript: %.1f s\n", avg)
	for _, p := range projections {
		fmt.Fprintf(os.Stdout, "  %d transcripts: %.1f s (%.1f min)\n",
			p.Transcripts, scale.RoundTenth(p.Seconds), scale.RoundTenth(p.Minutes))
	}
	return nil
}

func init() {
	projectCmd.Flags().Float64("average", 0, "per-transcript average in seconds")
	projectCmd.Flags().String("run", "", "run record to take the average from")
	projectCmd.Flags().IntSlice("counts", nil, "corpus sizes to project to")

	rootCmd.AddCommand(projectCmd)
}
