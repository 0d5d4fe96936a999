package verifier

import (
	"regexp"
	"strconv"

	"echopub/internal/core/domain"
)

var (
	statusMarker       = regexp.MustCompile(`(?i)statut|status`)
	viewsMarker        = regexp.MustCompile(`(?i)œil|vues|views|vu par`)
	relativeTimeMarker = regexp.MustCompile(`(?i)il y a|min|heure`)
	viewsCount         = regexp.MustCompile(`(?i)([0-9]{1,4})\s*(vues|vu par)`)
)

// Inspect runs the three status-screenshot heuristics over OCR text.
func Inspect(text string) domain.ConformityReport {
	return domain.ConformityReport{
		StatusMarker:       statusMarker.MatchString(text),
		ViewsMarker:        viewsMarker.MatchString(text),
		RelativeTimeMarker: relativeTimeMarker.MatchString(text),
		Text:               text,
	}
}

// ExtractViews returns the first "<n> vues" or "<n> vu par" count, or nil.
func ExtractViews(text string) *int64 {
	m := viewsCount.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
