package quality

import "regexp"

type marker struct {
	name    string
	pattern *regexp.Regexp
}

// ambiguityMarkers is the fixed list of hedges and double negations that
// make a true/false statement arguable.
var ambiguityMarkers = []marker{
	{"sometimes", regexp.MustCompile(`(?i)\bsometimes\b`)},
	{"often", regexp.MustCompile(`(?i)\boften\b`)},
	{"usually", regexp.MustCompile(`(?i)\busually\b`)},
	{"generally", regexp.MustCompile(`(?i)\bgenerally\b`)},
	{"typically", regexp.MustCompile(`(?i)\btypically\b`)},
	{"frequently", regexp.MustCompile(`(?i)\bfrequently\b`)},
	{"rarely", regexp.MustCompile(`(?i)\b(?:rarely|seldom)\b`)},
	{"mostly", regexp.MustCompile(`(?i)\bmostly\b`)},
	{"many", regexp.MustCompile(`(?i)\bmany\b`)},
	{"some", regexp.MustCompile(`(?i)\bsome\b`)},
	{"few", regexp.MustCompile(`(?i)\bfew\b`)},
	// Lower case only, so the month "May" is not a hedge.
	{"may", regexp.MustCompile(`\bmay\b|(?i:\bmight\b)`)},
	{"could", regexp.MustCompile(`(?i)\bcould\b`)},
	{"probably", regexp.MustCompile(`(?i)\b(?:probably|possibly|perhaps)\b`)},
	{"double negation", regexp.MustCompile(`(?i)` +
		`\b(?:not|never|no)\b[^.!?;]*\b(?:never|nothing|neither|none|nobody|nowhere)\b` +
		`|\bnot\s+(?:un(?:true|common|likely|like|usual|able|known|important|related|necessary|clear)` +
		`|in(?:correct|valid|accurate|active|significant|dependent|frequent)` +
		`|im(?:possible|probable)|irrelevant|dissimilar|non-?[a-z]+)\b`)},
}

// AmbiguityMarkers returns the names of the fixed marker list.
func AmbiguityMarkers() []string {
	out := make([]string, len(ambiguityMarkers))
	for i, m := range ambiguityMarkers {
		out[i] = m.name
	}
	return out
}

// FindAmbiguityMarkers returns the names of markers present in text, in
// list order.
func FindAmbiguityMarkers(text string) []string {
	var hits []string
	for _, m := range ambiguityMarkers {
		if m.pattern.MatchString(text) {
			hits = append(hits, m.name)
		}
	}
	return hits
}
