// Package suitability scores raw text for how well it can support
// question generation.
package suitability

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Report is the outcome of one assessment. It is never mutated after
// Assess returns.
type Report struct {
	WordCount      int `json:"word_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`

	IndicatorHits  map[Category]int `json:"indicator_hits"`
	IndicatorScore float64          `json:"indicator_score"`

	ContentScore    float64 `json:"content_score"`
	StructureScore  float64 `json:"structure_score"`
	VocabularyScore float64 `json:"vocabulary_score"`
	OverallScore    float64 `json:"overall_score"`

	Suitable        bool     `json:"suitable"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ContentInsufficientError is returned when there is nothing to assess,
// and by callers whose policy rejects an unsuitable report.
type ContentInsufficientError struct {
	Reason string
	Report *Report
}

func (e *ContentInsufficientError) Error() string {
	return "content insufficient: " + e.Reason
}

var (
	sentenceTerminators = regexp.MustCompile(`[.!?]+`)
	paragraphBreak      = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
)

// Assessor computes suitability reports. It holds only compiled patterns
// and configuration, so one Assessor is safe for concurrent use.
type Assessor struct {
	cfg        Config
	indicators map[Category]*regexp.Regexp
}

// New creates an Assessor with the given configuration.
func New(cfg Config) *Assessor {
	return &Assessor{cfg: cfg, indicators: compileIndicators()}
}

// Assess scores text. Empty or whitespace-only input returns a
// *ContentInsufficientError; anything else returns a report, suitable or not.
func (a *Assessor) Assess(text string) (*Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ContentInsufficientError{Reason: "source text is empty"}
	}

	words := strings.Fields(text)
	paragraphs := splitParagraphs(text)
	r := &Report{
		WordCount:      len(words),
		SentenceCount:  countSentences(text),
		ParagraphCount: len(paragraphs),
		IndicatorHits:  make(map[Category]int, len(a.indicators)),
	}

	for _, cat := range Categories() {
		hits := len(a.indicators[cat].FindAllStringIndex(text, -1))
		r.IndicatorHits[cat] = hits
		r.IndicatorScore += math.Min(float64(hits)*a.cfg.PointsPerHit, a.cfg.MaxCategoryPoints)
	}
	r.IndicatorScore = round2(clamp(r.IndicatorScore))

	r.ContentScore = round2(clamp(float64(r.WordCount) / a.cfg.WordsPerContentPoint))
	r.StructureScore = round2(a.structureScore(r.WordCount, r.SentenceCount, paragraphs))
	r.VocabularyScore = round2(a.vocabularyScore(words))

	w := a.cfg.Weights
	overall := w.Content*r.ContentScore +
		w.Indicators*r.IndicatorScore +
		w.Structure*r.StructureScore +
		w.Vocabulary*r.VocabularyScore
	r.OverallScore = round2(clamp(overall))

	r.Suitable = r.OverallScore >= a.cfg.MinScore && r.WordCount >= a.cfg.MinWords
	a.explain(r)
	return r, nil
}

func (a *Assessor) structureScore(words, sentences int, paragraphs []string) float64 {
	var score float64

	if sentences > 0 {
		avg := float64(words) / float64(sentences)
		switch {
		case avg < a.cfg.IdealSentenceMin:
			score += 5 * avg / a.cfg.IdealSentenceMin
		case avg > a.cfg.IdealSentenceMax:
			score += 5 * a.cfg.IdealSentenceMax / avg
		default:
			score += 5
		}
	}

	if len(paragraphs) >= 2 {
		cv := paragraphCV(paragraphs)
		if cv <= a.cfg.MaxParagraphCV {
			score += 3
		} else {
			score += 3 * math.Max(0, 1-(cv-a.cfg.MaxParagraphCV))
		}
	} else {
		// One paragraph has no variance to judge; half credit.
		score += 1.5
	}

	switch {
	case len(paragraphs) >= a.cfg.MinParagraphs:
		score += 2
	case len(paragraphs) >= 2:
		score += 1
	}
	return clamp(score)
}

func (a *Assessor) vocabularyScore(words []string) float64 {
	seen := make(map[string]struct{}, len(words))
	var total, long int
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if w == "" {
			continue
		}
		total++
		seen[w] = struct{}{}
		if utf8.RuneCountInString(w) >= a.cfg.LongWordRunes {
			long++
		}
	}
	if total == 0 {
		return 0
	}
	rootTTR := float64(len(seen)) / math.Sqrt(float64(total))
	longRatio := float64(long) / float64(total)
	return clamp(6*math.Min(1, rootTTR/a.cfg.TargetRootTTR) + 4*math.Min(1, longRatio/a.cfg.TargetLongWordRatio))
}

func (a *Assessor) explain(r *Report) {
	add := func(issue, rec string) {
		r.Issues = append(r.Issues, issue)
		r.Recommendations = append(r.Recommendations, rec)
	}
	if r.WordCount < a.cfg.MinWords {
		add(fmt.Sprintf("text is too short: %d words (minimum %d)", r.WordCount, a.cfg.MinWords),
			fmt.Sprintf("Provide at least %d words of source material.", a.cfg.MinWords))
	}
	if r.IndicatorScore < 3 {
		add("few educational indicators (definitions, explanations, evidence, quantities)",
			"Use material that defines concepts, explains causes and gives examples.")
	}
	if r.StructureScore < 4 {
		add("irregular structure: sentence or paragraph lengths are uneven",
			"Split the text into paragraphs of similar length with moderate sentences.")
	}
	if r.VocabularyScore < 3 {
		add("limited vocabulary variety",
			"Use richer source material; repetitive text yields repetitive questions.")
	}
	if r.OverallScore < a.cfg.MinScore {
		add(fmt.Sprintf("overall score %.2f is below the threshold %.2f", r.OverallScore, a.cfg.MinScore),
			"Add more substantive educational content before generating questions.")
	}
	if r.Issues == nil {
		r.Issues = []string{}
		r.Recommendations = []string{}
	}
}

func countSentences(text string) int {
	n := 0
	for _, s := range sentenceTerminators.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func paragraphCV(paragraphs []string) float64 {
	lengths := make([]float64, len(paragraphs))
	var sum float64
	for i, p := range paragraphs {
		lengths[i] = float64(len(strings.Fields(p)))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance) / mean
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
