// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/extraction-bench/internal/transcripts"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// --- mock runners ---

// mockRunner records invocations and optionally fails specific transcripts.
type mockRunner struct {
	calls   []string
	failFor map[string]error // transcript path → forced error
}

func (m *mockRunner) RunPhase(_ context.Context, phase, path string) error {
	m.calls = append(m.calls, phase+" "+path)
	if err, ok := m.failFor[path]; ok {
		return err
	}
	return nil
}

// failNTimesRunner fails the first N calls, then succeeds.
type failNTimesRunner struct {
	failures  int
	callCount int
}

func (f *failNTimesRunner) RunPhase(_ context.Context, _, _ string) error {
	f.callCount++
	if f.callCount <= f.failures {
		return fmt.Errorf("transient error (call %d)", f.callCount)
	}
	return nil
}

func corpus(t *testing.T, names ...string) []transcripts.Transcript {
	t.Helper()
	dir := t.TempDir()
	var out []transcripts.Transcript
	for _, name := range names {
		path := filepath.Join(dir, name+".txt")
		if err := os.WriteFile(path, []byte("A: hello\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		out = append(out, transcripts.Transcript{ID: name, Path: path})
	}
	return out
}

func testCfg() types.HarnessConfig {
	return types.HarnessConfig{
		Phases:     []string{"phase-4"},
		MaxRetries: 2,
	}
}

// --- Benchmark ---

func TestBenchmark(t *testing.T) {
	runner := &mockRunner{}
	var buf strings.Builder

	run, summary, err := Benchmark(context.Background(), runner, testCfg(), "baseline", corpus(t, "int-01", "int-02", "int-03"), &buf)
	if err != nil {
		t.Fatalf("Benchmark: %v", err)
	}

	if summary.Timed != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 3 timed, 0 failed", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("Total() = %d, want 3", summary.Total())
	}
	if summary.HasFailures() {
		t.Error("HasFailures() = true, want false")
	}

	if run.ID == "" {
		t.Error("run ID is empty")
	}
	if run.Label != "baseline" {
		t.Errorf("label = %q, want baseline", run.Label)
	}
	if run.TranscriptCount != 3 {
		t.Errorf("transcript count = %d, want 3", run.TranscriptCount)
	}
	if len(run.Timings) != 3 {
		t.Errorf("got %d timings, want 3", len(run.Timings))
	}
	if run.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}

	// One invocation per phase per transcript.
	if len(runner.calls) != 3 {
		t.Errorf("got %d runner calls, want 3", len(runner.calls))
	}

	// total / count must equal the stored average exactly: the average is
	// kept at full precision.
	want := run.TotalSeconds / float64(run.TranscriptCount)
	if run.AverageSeconds != want {
		t.Errorf("average = %v, want %v", run.AverageSeconds, want)
	}

	out := buf.String()
	if !strings.Contains(out, "timed   int-01") {
		t.Errorf("progress output missing int-01 line:\n%s", out)
	}
	if !strings.Contains(out, "timed: 3, failed: 0") {
		t.Errorf("progress output missing summary line:\n%s", out)
	}
}

func TestBenchmarkMultiPhase(t *testing.T) {
	runner := &mockRunner{}
	cfg := testCfg()
	cfg.Phases = []string{"segment", "extract"}

	run, _, err := Benchmark(context.Background(), runner, cfg, "baseline", corpus(t, "int-01"), discard())
	if err != nil {
		t.Fatalf("Benchmark: %v", err)
	}

	if len(run.Timings) != 2 {
		t.Fatalf("got %d timings, want 2", len(run.Timings))
	}
	if run.Timings[0].Phase != "segment" || run.Timings[1].Phase != "extract" {
		t.Errorf("phase order = %s, %s", run.Timings[0].Phase, run.Timings[1].Phase)
	}
	if run.TranscriptCount != 1 {
		t.Errorf("transcript count = %d, want 1", run.TranscriptCount)
	}
}

func TestBenchmarkFailedTranscriptExcluded(t *testing.T) {
	c := corpus(t, "good", "bad")
	runner := &mockRunner{failFor: map[string]error{
		c[1].Path: fmt.Errorf("boom"),
	}}

	var buf strings.Builder
	run, summary, err := Benchmark(context.Background(), runner, testCfg(), "baseline", c, &buf)
	if err != nil {
		t.Fatalf("Benchmark: %v", err)
	}

	if summary.Timed != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 timed, 1 failed", summary)
	}
	if run.TranscriptCount != 1 {
		t.Errorf("transcript count = %d, want 1 (failed excluded)", run.TranscriptCount)
	}

	failed := run.FailedTimings()
	if len(failed) != 1 {
		t.Fatalf("got %d failed timings, want 1", len(failed))
	}
	if failed[0].TranscriptID != "bad" {
		t.Errorf("failed transcript = %q, want bad", failed[0].TranscriptID)
	}
	if !strings.Contains(buf.String(), "failed  bad") {
		t.Errorf("progress output missing failure line:\n%s", buf.String())
	}
}

func TestBenchmarkRetriesTransientFailure(t *testing.T) {
	runner := &failNTimesRunner{failures: 2}

	run, summary, err := Benchmark(context.Background(), runner, testCfg(), "baseline", corpus(t, "int-01"), discard())
	if err != nil {
		t.Fatalf("Benchmark: %v", err)
	}
	if summary.Failed != 0 {
		t.Fatalf("summary = %+v, want no failures after retries", summary)
	}
	if runner.callCount != 3 {
		t.Errorf("call count = %d, want 3 (2 failures + 1 success)", runner.callCount)
	}
	if run.Timings[0].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", run.Timings[0].Attempts)
	}
}

func TestBenchmarkExhaustsRetries(t *testing.T) {
	runner := &failNTimesRunner{failures: 10}

	_, summary, err := Benchmark(context.Background(), runner, testCfg(), "baseline", corpus(t, "int-01"), discard())
	if err != nil {
		t.Fatalf("Benchmark: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 failed", summary)
	}
	// 1 initial + 2 retries.
	if runner.callCount != 3 {
		t.Errorf("call count = %d, want 3", runner.callCount)
	}
}

func TestBenchmarkEmptyCorpus(t *testing.T) {
	_, _, err := Benchmark(context.Background(), &mockRunner{}, testCfg(), "baseline", nil, discard())
	if err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestBenchmarkContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Benchmark(ctx, &mockRunner{}, testCfg(), "baseline", corpus(t, "int-01"), discard())
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func discard() *strings.Builder { return &strings.Builder{} }

// --- WriteRun / ReadRun ---

func TestWriteReadRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	run := &types.Run{
		ID:              "run-abc",
		Label:           "baseline",
		Phases:          []string{"phase-4"},
		StartedAt:       time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		TranscriptCount: 3,
		TotalSeconds:    53.5,
		AverageSeconds:  53.5 / 3,
		Timings: []types.PhaseTiming{
			{Phase: "phase-4", TranscriptID: "int-01", Seconds: 17.2, Attempts: 1},
		},
		Artifacts: []types.Artifact{
			{Name: "taxonomy.json", Path: "output/taxonomy.json", State: types.ArtifactOK, Bytes: 12},
		},
		Checklist: []types.ChecklistItem{
			{Claim: "all transcripts timed", Satisfied: true},
		},
	}

	path, err := WriteRun(dir, run)
	if err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if filepath.Base(path) != "run-abc.yaml" {
		t.Errorf("path = %s, want run-abc.yaml", path)
	}

	got, err := ReadRun(path)
	if err != nil {
		t.Fatalf("ReadRun: %v", err)
	}
	if got.ID != run.ID || got.Label != run.Label {
		t.Errorf("got %s/%s, want %s/%s", got.ID, got.Label, run.ID, run.Label)
	}
	if got.AverageSeconds != run.AverageSeconds {
		t.Errorf("average = %v, want %v (full precision must survive)", got.AverageSeconds, run.AverageSeconds)
	}
	if len(got.Timings) != 1 || got.Timings[0].TranscriptID != "int-01" {
		t.Errorf("timings did not round-trip: %+v", got.Timings)
	}
	if len(got.Artifacts) != 1 || got.Artifacts[0].State != types.ArtifactOK {
		t.Errorf("artifacts did not round-trip: %+v", got.Artifacts)
	}
}

func TestReadRunMissing(t *testing.T) {
	if _, err := ReadRun(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing run file")
	}
}
