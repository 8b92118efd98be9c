// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/extraction-bench/internal/checks"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	resultsDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(resultsDir, "runs"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(types.StoreConfig{ResultsDir: resultsDir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, resultsDir
}

func writeRunFile(t *testing.T, resultsDir string, run *types.Run) {
	t.Helper()
	data, err := yaml.Marshal(run)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(resultsDir, "runs", run.ID+".yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleRun(id, label string, startedAt time.Time, avg float64) *types.Run {
	return &types.Run{
		ID:              id,
		Label:           label,
		Phases:          []string{"phase-4"},
		StartedAt:       startedAt,
		TranscriptCount: 3,
		TotalSeconds:    avg * 3,
		AverageSeconds:  avg,
		Timings: []types.PhaseTiming{
			{Phase: "phase-4", TranscriptID: "int-01", Seconds: avg, Attempts: 1},
			{Phase: "phase-4", TranscriptID: "int-02", Seconds: avg, Attempts: 1},
			{Phase: "phase-4", TranscriptID: "int-03", Seconds: avg, Attempts: 1},
		},
		Artifacts: []types.Artifact{
			{Name: "taxonomy.json", State: types.ArtifactOK, Bytes: 10},
		},
		Checklist: []types.ChecklistItem{
			{Claim: "all transcripts timed", Satisfied: true},
		},
	}
}

var t0 = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func TestIngestAndGet(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 53.5/3))

	var buf strings.Builder
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 indexed", summary)
	}
	if !strings.Contains(buf.String(), "indexed run-1") {
		t.Errorf("progress output missing index line:\n%s", buf.String())
	}

	run, err := s.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Label != "baseline" {
		t.Errorf("label = %q, want baseline", run.Label)
	}
	if math.Abs(run.AverageSeconds-53.5/3) > 1e-9 {
		t.Errorf("average = %v, want %v", run.AverageSeconds, 53.5/3)
	}
	if len(run.Timings) != 3 {
		t.Errorf("got %d timings, want 3", len(run.Timings))
	}
	if len(run.Artifacts) != 1 || run.Artifacts[0].State != types.ArtifactOK {
		t.Errorf("artifacts did not survive: %+v", run.Artifacts)
	}
	if len(run.Checklist) != 1 || !run.Checklist[0].Satisfied {
		t.Errorf("checklist did not survive: %+v", run.Checklist)
	}
	if !run.StartedAt.Equal(t0) {
		t.Errorf("started_at = %v, want %v", run.StartedAt, t0)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 17.8))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Fatalf("summary = %+v, want 1 skipped", summary)
	}
	if !strings.Contains(buf.String(), "skipped run-1") {
		t.Errorf("progress output missing skip line:\n%s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	s, dir := testStore(t)
	run := sampleRun("run-1", "baseline", t0, 17.8)
	writeRunFile(t, dir, run)

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	run.Notes = "re-measured after warm cache"
	writeRunFile(t, dir, run)
	// Push the mod time forward so the change is visible.
	future := time.Now().Add(2 * time.Second)
	path := filepath.Join(dir, "runs", "run-1.yaml")
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	summary, err := s.Ingest(context.Background(), &strings.Builder{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Fatalf("summary = %+v, want 1 updated", summary)
	}

	got, err := s.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != "re-measured after warm cache" {
		t.Errorf("notes = %q", got.Notes)
	}
	// Old timings must not duplicate on update.
	if len(got.Timings) != 3 {
		t.Errorf("got %d timings after update, want 3", len(got.Timings))
	}
}

func TestIngestCountsMalformedFile(t *testing.T) {
	s, dir := testStore(t)
	path := filepath.Join(dir, "runs", "broken.yaml")
	if err := os.WriteFile(path, []byte(":\nnot yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := s.Ingest(context.Background(), &strings.Builder{})
	if err != nil {
		t.Fatalf("Ingest should not abort on one bad file: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 failed", summary)
	}
}

func TestListOrder(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-2", "opt-batching", t0.Add(24*time.Hour), 6.0))
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 17.8))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-2" {
		t.Errorf("order = %s, %s; want run-1, run-2", runs[0].ID, runs[1].ID)
	}
	// List omits timings.
	if len(runs[0].Timings) != 0 {
		t.Errorf("List loaded %d timings, want 0", len(runs[0].Timings))
	}
}

func TestFind(t *testing.T) {
	s, dir := testStore(t)
	base := sampleRun("run-1", "baseline", t0, 17.8)
	base.Notes = "unoptimized reference measurement"
	writeRunFile(t, dir, base)
	writeRunFile(t, dir, sampleRun("run-2", "opt-batching", t0.Add(time.Hour), 6.0))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.Find(context.Background(), "unoptimized", 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("Find = %+v, want run-1 only", runs)
	}

	runs, err = s.Find(context.Background(), "batching", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "run-2" {
		t.Fatalf("Find = %+v, want run-2 only", runs)
	}
}

func TestBaseline(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-3", "baseline", t0.Add(48*time.Hour), 16.0))
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 17.8))
	writeRunFile(t, dir, sampleRun("run-2", "opt", t0.Add(time.Hour), 6.0))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	baseline, err := s.Baseline(context.Background())
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	// The earliest baseline-labeled run wins.
	if baseline.ID != "run-1" {
		t.Errorf("baseline = %s, want run-1", baseline.ID)
	}
}

func TestBaselineMissing(t *testing.T) {
	s, _ := testStore(t)
	if _, err := s.Baseline(context.Background()); err == nil {
		t.Fatal("expected error when no baseline exists")
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := testStore(t)
	if _, err := s.Get(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestCompare(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 53.5/3))
	writeRunFile(t, dir, sampleRun("run-2", "opt-batching", t0.Add(time.Hour), 5.0))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	target := checks.NewTarget(types.TargetConfig{})
	cmp, err := s.Compare(context.Background(), "run-1", "run-2", target)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	// 17.83 / 5.0 ≈ 3.57x, which meets the 3x target.
	if math.Abs(cmp.Speedup-53.5/3/5.0) > 1e-9 {
		t.Errorf("speedup = %f", cmp.Speedup)
	}
	if !cmp.TargetMet {
		t.Error("3.57x should meet the 3x target")
	}
	if math.Abs(cmp.DeltaSeconds-(53.5/3-5.0)) > 1e-9 {
		t.Errorf("delta = %f", cmp.DeltaSeconds)
	}
	if math.Abs(cmp.PerItemBudget-53.5/3/3) > 1e-9 {
		t.Errorf("budget = %f", cmp.PerItemBudget)
	}
}

func TestCompareSlowRunMissesTarget(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 17.8))
	writeRunFile(t, dir, sampleRun("run-2", "opt-naive", t0.Add(time.Hour), 9.0))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	cmp, err := s.Compare(context.Background(), "run-1", "run-2", checks.NewTarget(types.TargetConfig{}))
	if err != nil {
		t.Fatal(err)
	}
	if cmp.TargetMet {
		t.Error("1.98x should miss the 3x target")
	}
}

func TestExport(t *testing.T) {
	s, dir := testStore(t)
	writeRunFile(t, dir, sampleRun("run-1", "baseline", t0, 17.8))

	if _, err := s.Ingest(context.Background(), &strings.Builder{}); err != nil {
		t.Fatal(err)
	}

	// Ingest already wrote export.yaml; also write JSON.
	if err := s.ExportJSON(context.Background()); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	yamlData, err := os.ReadFile(filepath.Join(dir, "index", "export.yaml"))
	if err != nil {
		t.Fatalf("reading export.yaml: %v", err)
	}
	var yamlEntries []ExportEntry
	if err := yaml.Unmarshal(yamlData, &yamlEntries); err != nil {
		t.Fatalf("parsing export.yaml: %v", err)
	}
	if len(yamlEntries) != 1 || yamlEntries[0].ID != "run-1" {
		t.Fatalf("export.yaml entries = %+v", yamlEntries)
	}

	jsonData, err := os.ReadFile(filepath.Join(dir, "index", "export.json"))
	if err != nil {
		t.Fatalf("reading export.json: %v", err)
	}
	var jsonEntries []ExportEntry
	if err := json.Unmarshal(jsonData, &jsonEntries); err != nil {
		t.Fatalf("parsing export.json: %v", err)
	}
	if len(jsonEntries) != 1 || jsonEntries[0].AverageSeconds != 17.8 {
		t.Fatalf("export.json entries = %+v", jsonEntries)
	}
}
