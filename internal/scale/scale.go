// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scale derives per-transcript averages and extrapolates measured
// timings to larger corpus sizes by linear scaling.
package scale

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// DefaultScales are the corpus sizes projected in reports when the
// configuration names none.
var DefaultScales = []int{5, 10, 20, 50, 100}

// Average returns the full-precision per-transcript average. Projections
// must be derived from this value, not from its rounded display form:
// rounding first compounds the error with the corpus size.
func Average(totalSeconds float64, count int) (float64, error) {
	if count <= 0 {
		return 0, fmt.Errorf("cannot average over %d transcripts", count)
	}
	if totalSeconds < 0 {
		return 0, fmt.Errorf("negative total %f", totalSeconds)
	}
	return totalSeconds / float64(count), nil
}

// Project extrapolates avgSeconds to each corpus size in counts. The result
// is ordered by ascending count regardless of input order. Non-positive
// counts are rejected.
func Project(avgSeconds float64, counts []int) ([]types.Projection, error) {
	if avgSeconds < 0 {
		return nil, fmt.Errorf("negative average %f", avgSeconds)
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	projections := make([]types.Projection, 0, len(sorted))
	for _, n := range sorted {
		if n <= 0 {
			return nil, fmt.Errorf("invalid projection size %d", n)
		}
		seconds := avgSeconds * float64(n)
		projections = append(projections, types.Projection{
			Transcripts: n,
			Seconds:     seconds,
			Minutes:     seconds / 60,
		})
	}
	return projections, nil
}

// RoundTenth rounds to one decimal place, the precision reports print
// durations at.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Speedup returns how many times faster run is than baseline
// (baseline / run). A non-positive run average is rejected.
func Speedup(baselineAvg, runAvg float64) (float64, error) {
	if runAvg <= 0 {
		return 0, fmt.Errorf("run average %f must be positive", runAvg)
	}
	if baselineAvg <= 0 {
		return 0, fmt.Errorf("baseline average %f must be positive", baselineAvg)
	}
	return baselineAvg / runAvg, nil
}
