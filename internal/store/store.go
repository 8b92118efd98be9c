// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists benchmark runs in a SQLite history so later runs
// can be compared against the baseline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

const (
	runsDir  = "runs"
	indexDir = "index"
	dbFile   = "bench.db"
)

// Store manages the run-history SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// NewStore opens or creates the history database at
// resultsDir/index/bench.db, creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		resultsDir: cfg.ResultsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			phases TEXT,
			started_at TEXT,
			transcript_count INTEGER,
			total_seconds REAL,
			average_seconds REAL,
			artifacts TEXT,
			checklist TEXT,
			notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS phase_timings (
			run_id TEXT NOT NULL REFERENCES runs(id),
			phase TEXT NOT NULL,
			transcript_id TEXT NOT NULL,
			seconds REAL,
			attempts INTEGER,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_timings_run_id ON phase_timings(run_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			run_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 over label and notes, with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(label, notes, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, label, notes) VALUES (new.rowid, new.label, new.notes);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, label, notes) VALUES('delete', old.rowid, old.label, old.notes);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, label, notes) VALUES('delete', old.rowid, old.label, old.notes);
				INSERT INTO runs_fts(rowid, label, notes) VALUES (new.rowid, new.label, new.notes);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a history indexing pass.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of run files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads run YAML files from resultsDir/runs/ into the database.
// Unchanged files (by mod time) are skipped so repeat ingests are cheap.
// On success it refreshes the export files.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	dir := filepath.Join(s.resultsDir, runsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading runs directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		runID := strings.TrimSuffix(entry.Name(), ".yaml")
		filePath := filepath.Join(dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE run_id = ?`, runID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", runID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}

		var run types.Run
		if err := yaml.Unmarshal(data, &run); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", runID, err)
			summary.Failed++
			continue
		}
		if run.ID == "" {
			run.ID = runID
		}

		if err := s.ingestRun(ctx, &run, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d timings)\n", runID, len(run.Timings))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d timings)\n", runID, len(run.Timings))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestRun(ctx context.Context, run *types.Run, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM phase_timings WHERE run_id = ?`, run.ID); err != nil {
			return fmt.Errorf("deleting old timings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
			return fmt.Errorf("deleting old run: %w", err)
		}
	}

	phasesJSON, _ := json.Marshal(run.Phases)
	artifactsJSON, _ := json.Marshal(run.Artifacts)
	checklistJSON, _ := json.Marshal(run.Checklist)
	startedAt := ""
	if !run.StartedAt.IsZero() {
		startedAt = run.StartedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, phases, started_at, transcript_count,
			total_seconds, average_seconds, artifacts, checklist, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, string(phasesJSON), startedAt, run.TranscriptCount,
		run.TotalSeconds, run.AverageSeconds,
		string(artifactsJSON), string(checklistJSON), run.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO phase_timings (run_id, phase, transcript_id, seconds, attempts, error)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing timing insert: %w", err)
	}
	defer stmt.Close()

	for _, timing := range run.Timings {
		_, err := stmt.ExecContext(ctx,
			run.ID, timing.Phase, timing.TranscriptID,
			timing.Seconds, timing.Attempts, timing.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting timing %s/%s: %w", timing.Phase, timing.TranscriptID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (run_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		run.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
