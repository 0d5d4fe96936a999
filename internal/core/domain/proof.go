package domain

import "time"

// ConformityReport is the outcome of analysing one proof image.
type ConformityReport struct {
	StatusMarker       bool       `json:"top_bar_contains"`
	ViewsMarker        bool       `json:"bottom_has_eyes_icon"`
	RelativeTimeMarker bool       `json:"image_contains_published_time"`
	CapturedAt         *time.Time `json:"captured_at,omitempty"`
	// Unavailable is set when the verifier could not run and the proof was
	// accepted under the soft-pass policy.
	Unavailable bool   `json:"verification_unavailable"`
	Text        string `json:"-"`
}

// Affirmative reports whether at least one heuristic matched.
func (r ConformityReport) Affirmative() bool {
	return r.StatusMarker || r.ViewsMarker || r.RelativeTimeMarker
}

// ProofComparison relates the first and second proof of a publication.
type ProofComparison struct {
	Hash1        string `json:"hash1"`
	Hash2        string `json:"hash2"`
	HashDistance int    `json:"hash_distance"`
	Views1       *int64 `json:"views1"`
	Views2       *int64 `json:"views2"`
}

// Consistent reports whether the second proof plausibly shows the same post
// as the first one with a non-decreasing view count.
func (c ProofComparison) Consistent(maxDistance int) bool {
	if c.HashDistance > maxDistance {
		return false
	}
	if c.Views1 != nil && c.Views2 != nil && *c.Views2 < *c.Views1 {
		return false
	}
	return true
}
