// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harness times an external extraction pipeline over a transcript
// corpus. The pipeline itself is opaque: the harness invokes it, measures
// wall time, and inspects what it leaves behind.
package harness

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/extraction-bench/internal/scale"
	"github.com/pdiddy/extraction-bench/internal/transcripts"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

// defaultPhase is timed when the configuration names no phases.
const defaultPhase = "phase-4"

// Runner abstracts the pipeline under test so tests can supply a mock.
// Each call processes one transcript through one phase.
type Runner interface {
	RunPhase(ctx context.Context, phase, transcriptPath string) error
}

// Summary holds counts from a benchmark run.
type Summary struct {
	Timed  int
	Failed int
}

// Total returns the number of transcripts processed.
func (s Summary) Total() int {
	return s.Timed + s.Failed
}

// HasFailures reports whether any transcript failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// backoffBase controls the base duration for exponential backoff between
// retried invocations. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Benchmark times every configured phase against every transcript in corpus
// and assembles the measurements into a Run. A transcript whose phases all
// complete contributes to the total and average; a transcript that fails a
// phase after retries is recorded with the error and excluded. Per-item
// progress lines are written to w.
func Benchmark(ctx context.Context, runner Runner, cfg types.HarnessConfig, label string, corpus []transcripts.Transcript, w io.Writer) (*types.Run, Summary, error) {
	if len(corpus) == 0 {
		return nil, Summary{}, fmt.Errorf("no transcripts to benchmark")
	}

	phases := cfg.Phases
	if len(phases) == 0 {
		phases = []string{defaultPhase}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	run := &types.Run{
		ID:        uuid.NewString(),
		Label:     label,
		Phases:    phases,
		StartedAt: time.Now().UTC(),
	}

	var summary Summary

	for _, tr := range corpus {
		select {
		case <-ctx.Done():
			return nil, summary, ctx.Err()
		default:
		}

		timings, transcriptSeconds, err := timeTranscript(ctx, runner, phases, tr, maxRetries)
		run.Timings = append(run.Timings, timings...)

		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", tr.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "timed   %s (%.1f s)\n", tr.ID, transcriptSeconds)
		run.TotalSeconds += transcriptSeconds
		summary.Timed++
	}

	run.TranscriptCount = summary.Timed
	if summary.Timed > 0 {
		avg, err := scale.Average(run.TotalSeconds, summary.Timed)
		if err != nil {
			return nil, summary, err
		}
		run.AverageSeconds = avg
	}

	run.Artifacts = CollectArtifacts(cfg.OutputDir, cfg.Artifacts)

	fmt.Fprintf(w, "\ntimed: %d, failed: %d, total: %.1f s, average: %.1f s\n",
		summary.Timed, summary.Failed, run.TotalSeconds, run.AverageSeconds)

	return run, summary, nil
}

// timeTranscript runs every phase against one transcript, measuring wall
// time per phase. It stops at the first phase that exhausts its retries.
func timeTranscript(ctx context.Context, runner Runner, phases []string, tr transcripts.Transcript, maxRetries int) ([]types.PhaseTiming, float64, error) {
	var timings []types.PhaseTiming
	var total float64

	for _, phase := range phases {
		seconds, attempts, err := timePhase(ctx, runner, phase, tr.Path, maxRetries)
		timing := types.PhaseTiming{
			Phase:        phase,
			TranscriptID: tr.ID,
			Seconds:      seconds,
			Attempts:     attempts,
		}
		if err != nil {
			timing.Error = err.Error()
			timings = append(timings, timing)
			return timings, 0, fmt.Errorf("phase %s: %w", phase, err)
		}
		timings = append(timings, timing)
		total += seconds
	}

	return timings, total, nil
}

// timePhase measures one phase invocation, retrying transient failures with
// exponential backoff. Only the successful attempt's duration is reported.
func timePhase(ctx context.Context, runner Runner, phase, path string, maxRetries int) (float64, int, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return 0, attempt, ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		err := runner.RunPhase(ctx, phase, path)
		if err == nil {
			return time.Since(start).Seconds(), attempt + 1, nil
		}
		lastErr = err
	}
	return 0, maxRetries + 1, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// WriteRun marshals a completed run to runsDir/[id].yaml.
func WriteRun(runsDir string, run *types.Run) (string, error) {
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating runs directory: %w", err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("marshaling run: %w", err)
	}

	path := filepath.Join(runsDir, run.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run: %w", err)
	}
	return path, nil
}

// ReadRun loads a run record from a YAML file written by WriteRun.
func ReadRun(path string) (*types.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", path, err)
	}
	var run types.Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run %s: %w", path, err)
	}
	return &run, nil
}
