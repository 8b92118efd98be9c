// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcripts discovers the interview-transcript corpus a benchmark
// run is timed against and gathers basic per-file statistics.
package transcripts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// Transcript describes one interview transcript file.
type Transcript struct {
	// ID is the filename without its extension.
	ID string `json:"id" yaml:"id"`

	// Path is the absolute or corpus-relative file path.
	Path string `json:"path" yaml:"path"`

	// Bytes is the file size.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// Words is the whitespace-separated token count.
	Words int `json:"words" yaml:"words"`

	// Turns counts speaker turns: lines beginning with an upper-case
	// speaker tag followed by a colon, e.g. "INTERVIEWER:".
	Turns int `json:"turns" yaml:"turns"`
}

// transcriptExts are the file extensions treated as transcripts.
var transcriptExts = map[string]bool{
	".txt": true,
	".md":  true,
}

// List returns the transcripts in dir in filename order. Subdirectories and
// dotfiles are skipped. Stats for the files are gathered concurrently; a
// single unreadable file fails the whole listing so a run never silently
// times a partial corpus.
func List(dir string) ([]Transcript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading transcript directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !transcriptExts[filepath.Ext(entry.Name())] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := make([]Transcript, len(names))

	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			t, err := stat(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			result[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// stat reads one transcript file and computes its statistics.
func stat(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("reading transcript %s: %w", path, err)
	}

	name := filepath.Base(path)
	return Transcript{
		ID:    strings.TrimSuffix(name, filepath.Ext(name)),
		Path:  path,
		Bytes: int64(len(data)),
		Words: len(strings.Fields(string(data))),
		Turns: countTurns(string(data)),
	}, nil
}

// countTurns counts lines that open with a speaker tag. A speaker tag is a
// run of letters, digits, spaces, or underscores starting with an upper-case
// letter and terminated by a colon within the first 40 characters.
func countTurns(content string) int {
	turns := 0
	for _, line := range strings.Split(content, "\n") {
		if isTurnLine(strings.TrimSpace(line)) {
			turns++
		}
	}
	return turns
}

func isTurnLine(line string) bool {
	if line == "" {
		return false
	}
	first := []rune(line)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	limit := 40
	if len(line) < limit {
		limit = len(line)
	}
	for i, r := range line[:limit] {
		switch {
		case r == ':':
			return i > 0
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ' ', r == '_':
			// still inside the tag
		default:
			return false
		}
	}
	return false
}
