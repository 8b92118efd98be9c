// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders benchmark results as the canonical results log,
// parses that log back into records, and verifies the arithmetic consistency
// of the printed numbers.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/extraction-bench/internal/scale"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

// Section headers of the report grammar. Parse keys off these exact strings.
const (
	headerLine        = "=== Extraction Benchmark Results ==="
	sectionMeasured   = "Measured"
	sectionProjection = "Projections (linear)"
	sectionArtifacts  = "Artifacts"
	sectionChecklist  = "Checklist"
)

// Field labels within the measured block.
const (
	labelTimed   = "transcripts timed:"
	labelTotal   = "total time:"
	labelAverage = "average per transcript:"
)

// Render produces the results report for a run. Durations print rounded to
// one decimal; the run record keeps the full-precision values, and the
// projections passed in are expected to come from the full-precision average.
func Render(run *types.Run, projections []types.Projection) string {
	var b strings.Builder

	fmt.Fprintln(&b, headerLine)
	fmt.Fprintf(&b, "run:    %s\n", run.ID)
	fmt.Fprintf(&b, "label:  %s\n", run.Label)
	fmt.Fprintf(&b, "phases: %s\n", strings.Join(run.Phases, ", "))
	if !run.StartedAt.IsZero() {
		fmt.Fprintf(&b, "date:   %s\n", run.StartedAt.UTC().Format(time.RFC3339))
	}

	fmt.Fprintf(&b, "\n%s\n", sectionMeasured)
	fmt.Fprintf(&b, "  %s       %d\n", labelTimed, run.TranscriptCount)
	fmt.Fprintf(&b, "  %s              %.1f s\n", labelTotal, run.TotalSeconds)
	fmt.Fprintf(&b, "  %s  %.1f s\n", labelAverage, run.AverageSeconds)

	if len(projections) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionProjection)
		for _, p := range projections {
			fmt.Fprintf(&b, "  %d transcripts: %.1f s (%.1f min)\n",
				p.Transcripts, scale.RoundTenth(p.Seconds), scale.RoundTenth(p.Minutes))
		}
	}

	if len(run.Artifacts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionArtifacts)
		for _, a := range run.Artifacts {
			fmt.Fprintf(&b, "  %-22s %s\n", a.Name, a.State)
		}
	}

	if len(run.Checklist) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionChecklist)
		for _, item := range run.Checklist {
			mark := "[ ]"
			if item.Satisfied {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "  %s %s\n", mark, item.Claim)
		}
	}

	return b.String()
}
