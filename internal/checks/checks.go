// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checks evaluates the validation checklist for a benchmark run and
// the speedup target a run is measured against.
package checks

import (
	"fmt"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// Default speedup goal: 3x required, 5x stretch.
const (
	DefaultMinSpeedup = 3.0
	DefaultMaxSpeedup = 5.0
)

// Target is the speedup goal relative to a baseline per-transcript average.
type Target struct {
	MinSpeedup float64
	MaxSpeedup float64
}

// NewTarget builds a Target from configuration, applying defaults for
// unset factors.
func NewTarget(cfg types.TargetConfig) Target {
	t := Target{MinSpeedup: cfg.MinSpeedup, MaxSpeedup: cfg.MaxSpeedup}
	if t.MinSpeedup <= 0 {
		t.MinSpeedup = DefaultMinSpeedup
	}
	if t.MaxSpeedup <= 0 {
		t.MaxSpeedup = DefaultMaxSpeedup
	}
	return t
}

// PerItemBudget is the per-transcript average a run must stay under to meet
// the minimum speedup against baselineAvg. For the 17.8 s baseline at 3x
// this is just under 5.9 s.
func (t Target) PerItemBudget(baselineAvg float64) float64 {
	return baselineAvg / t.MinSpeedup
}

// Met reports whether a run average meets the minimum speedup.
func (t Target) Met(baselineAvg, runAvg float64) bool {
	if runAvg <= 0 || baselineAvg <= 0 {
		return false
	}
	return baselineAvg/runAvg >= t.MinSpeedup
}

// Evaluate produces the validation checklist for a run. When baselineAvg is
// positive, a speedup-target item is included; a baseline run is its own
// reference and gets no target item.
func Evaluate(run *types.Run, target Target, baselineAvg float64) []types.ChecklistItem {
	items := []types.ChecklistItem{
		{
			Claim:     "all transcripts timed",
			Satisfied: run.TranscriptCount > 0 && len(run.FailedTimings()) == 0,
		},
		{
			Claim:     "average computed over a non-zero corpus",
			Satisfied: run.TranscriptCount > 0 && run.AverageSeconds > 0,
		},
		{
			Claim:     "all expected artifacts present and parseable",
			Satisfied: len(run.Artifacts) > 0 && run.ArtifactsOK(),
		},
	}

	if baselineAvg > 0 {
		items = append(items, types.ChecklistItem{
			Claim: fmt.Sprintf("per-transcript average within %.1fx target (%.1f s budget)",
				target.MinSpeedup, target.PerItemBudget(baselineAvg)),
			Satisfied: target.Met(baselineAvg, run.AverageSeconds),
		})
	}

	return items
}

// AllSatisfied reports whether every checklist item passed.
func AllSatisfied(items []types.ChecklistItem) bool {
	for _, item := range items {
		if !item.Satisfied {
			return false
		}
	}
	return len(items) > 0
}
