// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harness

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// defaultArtifacts are the output files checked when the configuration
// names none.
var defaultArtifacts = []string{
	"entity_schema.json",
	"speaker_schema.json",
	"taxonomy.json",
}

// CollectArtifacts validates the expected pipeline outputs in outputDir.
// Validation is shallow on purpose: present, non-empty, well-formed JSON.
// The artifacts' internal structure is the pipeline's business.
func CollectArtifacts(outputDir string, names []string) []types.Artifact {
	if len(names) == 0 {
		names = defaultArtifacts
	}

	artifacts := make([]types.Artifact, 0, len(names))
	for _, name := range names {
		path := filepath.Join(outputDir, name)
		artifacts = append(artifacts, checkArtifact(name, path))
	}
	return artifacts
}

func checkArtifact(name, path string) types.Artifact {
	a := types.Artifact{Name: name, Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		a.State = types.ArtifactMissing
		return a
	}

	a.Bytes = int64(len(data))
	if len(data) == 0 {
		a.State = types.ArtifactEmpty
		return a
	}

	if !json.Valid(data) {
		a.State = types.ArtifactMalformed
		return a
	}

	a.State = types.ArtifactOK
	return a
}
