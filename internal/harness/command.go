// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harness

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec. The pipeline's
// own stdout is discarded; the harness only cares about exit status and time.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// CommandRunner invokes the configured pipeline command once per phase per
// transcript, substituting the {phase}, {transcript}, and {output}
// placeholders in the argv template.
type CommandRunner struct {
	template  []string
	outputDir string
	exec      executor
}

// NewCommandRunner builds a CommandRunner from the harness configuration.
// The template must have at least a program name.
func NewCommandRunner(cfg types.HarnessConfig) (*CommandRunner, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("harness command is not configured")
	}
	return &CommandRunner{
		template:  cfg.Command,
		outputDir: cfg.OutputDir,
		exec:      osExecutor{},
	}, nil
}

// RunPhase substitutes placeholders and executes the command.
func (c *CommandRunner) RunPhase(ctx context.Context, phase, transcriptPath string) error {
	argv := c.expand(phase, transcriptPath)
	if err := c.exec.Run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("running %s for %s: %w", argv[0], transcriptPath, err)
	}
	return nil
}

func (c *CommandRunner) expand(phase, transcriptPath string) []string {
	replacer := strings.NewReplacer(
		"{phase}", phase,
		"{transcript}", transcriptPath,
		"{output}", c.outputDir,
	)
	argv := make([]string, len(c.template))
	for i, arg := range c.template {
		argv[i] = replacer.Replace(arg)
	}
	return argv
}
