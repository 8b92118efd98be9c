package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that talk to the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "extraction-bench/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarnessConfig holds settings for the timing harness.
type HarnessConfig struct {
	// Command is the argv template for the pipeline under test. The
	// placeholders {phase}, {transcript}, and {output} are substituted
	// per invocation.
	Command []string `json:"command" yaml:"command"`

	// Phases lists the pipeline phases to time, in order (default: phase-4).
	Phases []string `json:"phases" yaml:"phases"`

	// TranscriptsDir is the directory holding the transcript corpus.
	TranscriptsDir string `json:"transcripts_dir" yaml:"transcripts_dir"`

	// OutputDir is where the pipeline writes its artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Artifacts lists the output filenames expected after a run.
	Artifacts []string `json:"artifacts" yaml:"artifacts"`

	// MaxRetries is the number of retry attempts for a failed phase
	// invocation (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RunsDir is where completed run records are written as YAML.
	RunsDir string `json:"runs_dir" yaml:"runs_dir"`
}

// ReportConfig holds settings for report rendering.
type ReportConfig struct {
	// Scales lists the corpus sizes to project to (default 5, 10, 20, 50, 100).
	Scales []int `json:"scales" yaml:"scales"`

	// ReportsDir is where rendered reports are written.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// TargetConfig describes the speedup goal measured against a baseline run.
type TargetConfig struct {
	// MinSpeedup is the factor a run must reach for the target to count as
	// met (default 3.0).
	MinSpeedup float64 `json:"min_speedup" yaml:"min_speedup"`

	// MaxSpeedup is the stretch factor reported alongside (default 5.0).
	MaxSpeedup float64 `json:"max_speedup" yaml:"max_speedup"`
}

// StoreConfig holds settings for the run-history store.
type StoreConfig struct {
	// ResultsDir is the base directory for results (contains runs/, index/).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PublishConfig holds settings for publishing runs to a results endpoint.
type PublishConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the URL runs are POSTed to.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token authenticates the request. Usually loaded from secrets.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// MaxRetries is the number of retry attempts on rate limiting (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// BenchConfig groups all stage configurations for the harness.
type BenchConfig struct {
	Harness HarnessConfig `json:"harness" yaml:"harness"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Target  TargetConfig  `json:"target" yaml:"target"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Publish PublishConfig `json:"publish" yaml:"publish"`
}
