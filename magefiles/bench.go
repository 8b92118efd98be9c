//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// cli runs the built binary with args, streaming its output.
func cli(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Baseline times the pipeline over the transcript corpus and records a
// baseline run.
func Baseline() error {
	mg.Deps(Build, Init)
	fmt.Println("[baseline] Timing pipeline over transcripts/.")
	return cli("run", "--label", "baseline")
}

// Ingest indexes new and changed run records into the results store.
func Ingest() error {
	mg.Deps(Build)
	return cli("store", "ingest")
}

// Export writes flattened run summaries to results/index/.
func Export() error {
	mg.Deps(Ingest)
	return cli("store", "export")
}
