// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"math"

	"github.com/pdiddy/extraction-bench/pkg/types"
)

// displayUlp is the largest error display rounding can introduce into any
// printed duration: reports round to one decimal, so half an ulp is 0.05.
const displayUlp = 0.05

// Finding is one arithmetic or consistency violation in a report.
type Finding struct {
	// Check names the property that failed.
	Check string

	// Detail explains the violation with the numbers involved.
	Detail string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Check, f.Detail)
}

// Verify runs the arithmetic sanity checks over a parsed report:
//
//   - total / count must agree with the printed average,
//   - each projection's seconds must agree with printed average × count,
//   - each projection's minutes must be its seconds / 60,
//   - unsatisfied checklist items are surfaced.
//
// All duration comparisons tolerate display rounding. Projections are
// derived from the full-precision average before rounding, so the printed
// seconds may differ from printed-average × count by up to half an ulp per
// rounded factor; the tolerance scales with the projection count to admit
// exactly that drift and nothing more.
func Verify(parsed *Parsed) []Finding {
	var findings []Finding

	m := parsed.Measured
	if m.Transcripts <= 0 {
		findings = append(findings, Finding{
			Check:  "measured",
			Detail: fmt.Sprintf("transcript count %d is not positive", m.Transcripts),
		})
		return findings
	}

	derived := m.TotalSeconds / float64(m.Transcripts)
	tol := displayUlp * (1 + 1/float64(m.Transcripts))
	if math.Abs(derived-m.AverageSeconds) > tol {
		findings = append(findings, Finding{
			Check: "average",
			Detail: fmt.Sprintf("total %.1f / %d = %.3f, but report prints %.1f",
				m.TotalSeconds, m.Transcripts, derived, m.AverageSeconds),
		})
	}

	for _, p := range parsed.Projections {
		findings = append(findings, verifyProjection(m.AverageSeconds, p)...)
	}

	for _, item := range parsed.Checklist {
		if !item.Satisfied {
			findings = append(findings, Finding{
				Check:  "checklist",
				Detail: fmt.Sprintf("unsatisfied: %s", item.Claim),
			})
		}
	}

	return findings
}

func verifyProjection(printedAvg float64, p types.Projection) []Finding {
	var findings []Finding

	if p.Transcripts <= 0 {
		return []Finding{{
			Check:  "projection",
			Detail: fmt.Sprintf("projection count %d is not positive", p.Transcripts),
		}}
	}

	expected := printedAvg * float64(p.Transcripts)
	tolSeconds := displayUlp * float64(p.Transcripts+1)
	if math.Abs(p.Seconds-expected) > tolSeconds {
		findings = append(findings, Finding{
			Check: "projection-seconds",
			Detail: fmt.Sprintf("%d transcripts: printed %.1f s, but %.1f x %d = %.1f s (tolerance %.2f)",
				p.Transcripts, p.Seconds, printedAvg, p.Transcripts, expected, tolSeconds),
		})
	}

	tolMinutes := displayUlp * (1 + 1.0/60)
	if math.Abs(p.Minutes-p.Seconds/60) > tolMinutes {
		findings = append(findings, Finding{
			Check: "projection-minutes",
			Detail: fmt.Sprintf("%d transcripts: printed %.1f min, but %.1f s / 60 = %.2f min",
				p.Transcripts, p.Minutes, p.Seconds, p.Seconds/60),
		})
	}

	return findings
}
