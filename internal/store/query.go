// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/extraction-bench/internal/checks"
	"github.com/pdiddy/extraction-bench/internal/scale"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

// baselineLabel marks the first recorded, unoptimized measurement that later
// runs are compared against.
const baselineLabel = "baseline"

const runColumns = `id, label, phases, started_at, transcript_count,
	total_seconds, average_seconds, artifacts, checklist, notes`

// List returns stored runs ordered by start time, oldest first. Timings are
// not loaded; use Get for a full record.
func (s *Store) List(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Find searches run labels and notes with an FTS5 query.
func (s *Store) Find(ctx context.Context, query string, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE rowid IN (SELECT rowid FROM runs_fts WHERE runs_fts MATCH ?)
		 ORDER BY started_at LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Get loads one run, including its phase timings.
func (s *Store) Get(ctx context.Context, id string) (*types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT phase, transcript_id, seconds, attempts, error
		 FROM phase_timings WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("loading timings for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t types.PhaseTiming
		var errText sql.NullString
		if err := rows.Scan(&t.Phase, &t.TranscriptID, &t.Seconds, &t.Attempts, &errText); err != nil {
			return nil, fmt.Errorf("scanning timing: %w", err)
		}
		if errText.Valid {
			t.Error = errText.String
		}
		run.Timings = append(run.Timings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return run, nil
}

// Baseline returns the earliest run labeled "baseline".
func (s *Store) Baseline(ctx context.Context) (*types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE label = ?
		 ORDER BY started_at LIMIT 1`, baselineLabel)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no baseline run recorded")
		}
		return nil, fmt.Errorf("loading baseline: %w", err)
	}
	return run, nil
}

// Comparison is the outcome of measuring a run against a baseline.
type Comparison struct {
	Baseline *types.Run `json:"baseline" yaml:"baseline"`
	Run      *types.Run `json:"run" yaml:"run"`

	// Speedup is baseline average / run average.
	Speedup float64 `json:"speedup" yaml:"speedup"`

	// DeltaSeconds is the per-transcript improvement (positive = faster).
	DeltaSeconds float64 `json:"delta_seconds" yaml:"delta_seconds"`

	// PerItemBudget is the per-transcript average the target demands.
	PerItemBudget float64 `json:"per_item_budget" yaml:"per_item_budget"`

	// TargetMet reports whether the run reaches the minimum speedup.
	TargetMet bool `json:"target_met" yaml:"target_met"`
}

// Compare measures run runID against run baselineID under the given target.
func (s *Store) Compare(ctx context.Context, baselineID, runID string, target checks.Target) (*Comparison, error) {
	baseline, err := s.Get(ctx, baselineID)
	if err != nil {
		return nil, err
	}
	run, err := s.Get(ctx, runID)
	if err != nil {
		return nil, err
	}

	speedup, err := scale.Speedup(baseline.AverageSeconds, run.AverageSeconds)
	if err != nil {
		return nil, fmt.Errorf("comparing %s against %s: %w", runID, baselineID, err)
	}

	return &Comparison{
		Baseline:      baseline,
		Run:           run,
		Speedup:       speedup,
		DeltaSeconds:  baseline.AverageSeconds - run.AverageSeconds,
		PerItemBudget: target.PerItemBudget(baseline.AverageSeconds),
		TargetMet:     target.Met(baseline.AverageSeconds, run.AverageSeconds),
	}, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*types.Run, error) {
	var (
		run           types.Run
		phasesJSON    sql.NullString
		startedAt     sql.NullString
		artifactsJSON sql.NullString
		checklistJSON sql.NullString
		notes         sql.NullString
	)

	if err := row.Scan(
		&run.ID, &run.Label, &phasesJSON, &startedAt, &run.TranscriptCount,
		&run.TotalSeconds, &run.AverageSeconds, &artifactsJSON, &checklistJSON, &notes,
	); err != nil {
		return nil, err
	}

	if phasesJSON.Valid {
		json.Unmarshal([]byte(phasesJSON.String), &run.Phases)
	}
	if artifactsJSON.Valid {
		json.Unmarshal([]byte(artifactsJSON.String), &run.Artifacts)
	}
	if checklistJSON.Valid {
		json.Unmarshal([]byte(checklistJSON.String), &run.Checklist)
	}
	if notes.Valid {
		run.Notes = notes.String
	}
	if startedAt.Valid && startedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, startedAt.String)
		if err == nil {
			run.StartedAt = t
		}
	}

	return &run, nil
}

func scanRuns(rows *sql.Rows) ([]types.Run, error) {
	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
