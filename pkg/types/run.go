// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the benchmark harness:
// runs, phase timings, projections, artifacts, and checklist items.
package types

import "time"

// ArtifactState describes the result of validating one pipeline output file.
type ArtifactState string

const (
	ArtifactOK        ArtifactState = "ok"
	ArtifactMissing   ArtifactState = "missing"
	ArtifactEmpty     ArtifactState = "empty"
	ArtifactMalformed ArtifactState = "malformed"
)

// Artifact references one output file the pipeline is expected to produce.
// Validation is deliberately shallow: the file must exist, be non-empty, and
// parse as JSON. No schema is assumed.
type Artifact struct {
	// Name is the bare filename (e.g. "entity_schema.json").
	Name string `json:"name" yaml:"name"`

	// Path is where the artifact was looked for.
	Path string `json:"path" yaml:"path"`

	// State records the validation outcome.
	State ArtifactState `json:"state" yaml:"state"`

	// Bytes is the file size, zero when missing.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// PhaseTiming is a single measurement: one phase run against one transcript.
type PhaseTiming struct {
	// Phase names the pipeline phase that was timed (e.g. "phase-4").
	Phase string `json:"phase" yaml:"phase"`

	// TranscriptID identifies the transcript, derived from its filename.
	TranscriptID string `json:"transcript_id" yaml:"transcript_id"`

	// Seconds is the measured wall time.
	Seconds float64 `json:"seconds" yaml:"seconds"`

	// Attempts counts how many invocations were needed, including retries.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Error records a measurement failure. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ChecklistItem is one validation claim with its observed outcome.
type ChecklistItem struct {
	// Claim is the human-readable statement being checked.
	Claim string `json:"claim" yaml:"claim"`

	// Satisfied reports whether the claim held for this run.
	Satisfied bool `json:"satisfied" yaml:"satisfied"`
}

// Run is one complete benchmark run of the pipeline over a transcript corpus.
// AverageSeconds keeps full precision; reports round for display only, so
// projections derived from a Run never inherit display rounding.
type Run struct {
	// ID is a unique identifier for the run.
	ID string `json:"id" yaml:"id"`

	// Label tags the run for comparison, e.g. "baseline" or "opt-batching".
	Label string `json:"label" yaml:"label"`

	// Phases lists the pipeline phases that were timed, in order.
	Phases []string `json:"phases" yaml:"phases"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// TranscriptCount is the number of transcripts successfully timed.
	TranscriptCount int `json:"transcript_count" yaml:"transcript_count"`

	// TotalSeconds is the summed wall time across all timings.
	TotalSeconds float64 `json:"total_seconds" yaml:"total_seconds"`

	// AverageSeconds is TotalSeconds / TranscriptCount at full precision.
	AverageSeconds float64 `json:"average_seconds" yaml:"average_seconds"`

	// Timings holds the individual measurements, including failed ones.
	Timings []PhaseTiming `json:"timings" yaml:"timings"`

	// Artifacts holds the validation outcome for each expected output file.
	Artifacts []Artifact `json:"artifacts" yaml:"artifacts"`

	// Checklist holds the run's validation checklist.
	Checklist []ChecklistItem `json:"checklist" yaml:"checklist"`

	// Notes is free-form operator commentary, searchable in the run store.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// FailedTimings returns the measurements that recorded an error.
func (r *Run) FailedTimings() []PhaseTiming {
	var failed []PhaseTiming
	for _, t := range r.Timings {
		if t.Error != "" {
			failed = append(failed, t)
		}
	}
	return failed
}

// ArtifactsOK reports whether every expected artifact validated clean.
func (r *Run) ArtifactsOK() bool {
	for _, a := range r.Artifacts {
		if a.State != ArtifactOK {
			return false
		}
	}
	return true
}
