// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Projection extrapolates a measured per-transcript average to a larger
// corpus by linear scaling. Seconds carries full precision; Minutes is
// always Seconds / 60.
type Projection struct {
	// Transcripts is the corpus size being projected to.
	Transcripts int `json:"transcripts" yaml:"transcripts"`

	// Seconds is the projected total duration.
	Seconds float64 `json:"seconds" yaml:"seconds"`

	// Minutes is the projected duration expressed in minutes.
	Minutes float64 `json:"minutes" yaml:"minutes"`
}
