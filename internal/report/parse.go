// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// Measured holds the measured block of a parsed report. Values carry the
// display rounding of the printed text, not the run's full precision.
type Measured struct {
	Transcripts    int
	TotalSeconds   float64
	AverageSeconds float64
}

// Parsed is a results report read back from text.
type Parsed struct {
	RunID       string
	Label       string
	Measured    Measured
	Projections []types.Projection
	Artifacts   []types.Artifact
	Checklist   []types.ChecklistItem
}

// projectionPattern matches "5 transcripts: 89.2 s (1.5 min)".
var projectionPattern = regexp.MustCompile(`^(\d+) transcripts:\s+([0-9.]+) s \(([0-9.]+) min\)$`)

// checklistPattern matches "[x] claim" and "[ ] claim".
var checklistPattern = regexp.MustCompile(`^\[( |x)\] (.+)$`)

// Parse reads a rendered report back into records. Lines it does not
// recognize are skipped; a report without a complete measured block is
// rejected, because nothing downstream can be checked without it.
func Parse(text string) (*Parsed, error) {
	parsed := &Parsed{}
	section := ""
	seenMeasured := map[string]bool{}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == headerLine {
			continue
		}

		switch line {
		case sectionMeasured, sectionProjection, sectionArtifacts, sectionChecklist:
			section = line
			continue
		}

		switch section {
		case "":
			parseHeaderField(parsed, line)
		case sectionMeasured:
			if err := parseMeasuredField(parsed, line, seenMeasured); err != nil {
				return nil, err
			}
		case sectionProjection:
			if p, ok := parseProjection(line); ok {
				parsed.Projections = append(parsed.Projections, p)
			}
		case sectionArtifacts:
			if a, ok := parseArtifact(line); ok {
				parsed.Artifacts = append(parsed.Artifacts, a)
			}
		case sectionChecklist:
			if c, ok := parseChecklistItem(line); ok {
				parsed.Checklist = append(parsed.Checklist, c)
			}
		}
	}

	for _, label := range []string{labelTimed, labelTotal, labelAverage} {
		if !seenMeasured[label] {
			return nil, fmt.Errorf("report is missing measured field %q", strings.TrimSuffix(label, ":"))
		}
	}

	return parsed, nil
}

func parseHeaderField(parsed *Parsed, line string) {
	switch {
	case strings.HasPrefix(line, "run:"):
		parsed.RunID = strings.TrimSpace(strings.TrimPrefix(line, "run:"))
	case strings.HasPrefix(line, "label:"):
		parsed.Label = strings.TrimSpace(strings.TrimPrefix(line, "label:"))
	}
}

func parseMeasuredField(parsed *Parsed, line string, seen map[string]bool) error {
	for _, label := range []string{labelTimed, labelTotal, labelAverage} {
		if !strings.HasPrefix(line, label) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, label))
		value = strings.TrimSuffix(value, " s")

		switch label {
		case labelTimed:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("parsing transcript count %q: %w", value, err)
			}
			parsed.Measured.Transcripts = n
		case labelTotal:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parsing total time %q: %w", value, err)
			}
			parsed.Measured.TotalSeconds = f
		case labelAverage:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parsing average %q: %w", value, err)
			}
			parsed.Measured.AverageSeconds = f
		}

		seen[label] = true
		return nil
	}
	return nil
}

func parseProjection(line string) (types.Projection, bool) {
	m := projectionPattern.FindStringSubmatch(line)
	if m == nil {
		return types.Projection{}, false
	}
	n, err1 := strconv.Atoi(m[1])
	seconds, err2 := strconv.ParseFloat(m[2], 64)
	minutes, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return types.Projection{}, false
	}
	return types.Projection{Transcripts: n, Seconds: seconds, Minutes: minutes}, true
}

func parseArtifact(line string) (types.Artifact, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return types.Artifact{}, false
	}
	return types.Artifact{
		Name:  fields[0],
		State: types.ArtifactState(fields[1]),
	}, true
}

func parseChecklistItem(line string) (types.ChecklistItem, bool) {
	m := checklistPattern.FindStringSubmatch(line)
	if m == nil {
		return types.ChecklistItem{}, false
	}
	return types.ChecklistItem{
		Claim:     m[2],
		Satisfied: m[1] == "x",
	}, true
}
