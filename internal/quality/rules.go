package quality

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/abhisek/quizgenius/internal/question"
)

// Issue codes.
const (
	CodeTextLength         = "text_length"
	CodeOptionCount        = "option_count"
	CodeOptionKeys         = "option_keys"
	CodeOptionLength       = "option_length"
	CodeOptionEmpty        = "option_empty"
	CodeCorrectKey         = "correct_key_invalid"
	CodeDuplicateOptions   = "duplicate_options"
	CodeSimilarDistractors = "distractor_too_similar"
	CodeLowPlausibility    = "implausible_distractors"
	CodeAmbiguityMarker    = "ambiguity_marker"
	CodeAnswerNotBoolean   = "answer_not_boolean"
	CodeMissingExplanation = "missing_explanation"
	CodeUnknownType        = "unknown_type"
)

// Sub-score names reported on an outcome.
const (
	SubScoreStructure    = "structure"
	SubScoreDistinctness = "distinctness"
	SubScorePlausibility = "plausibility"
	SubScoreClarity      = "clarity"
)

// Rule checks one aspect of a draft and records its findings on the
// outcome.
type Rule interface {
	Name() string
	Check(d question.Draft, out *question.Outcome)
}

func addIssue(out *question.Outcome, code string, penalty float64, fatal bool, format string, args ...any) {
	out.Issues = append(out.Issues, question.Issue{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Penalty: penalty,
		Fatal:   fatal,
	})
}

// TextLengthRule bounds the question or statement length. Text below the
// minimum is fatal; overlong text is only penalised.
type TextLengthRule struct{ cfg Config }

func (r *TextLengthRule) Name() string { return "text-length" }

func (r *TextLengthRule) Check(d question.Draft, out *question.Outcome) {
	n := utf8.RuneCountInString(strings.TrimSpace(d.Text))
	switch {
	case n < r.cfg.MinTextRunes:
		addIssue(out, CodeTextLength, r.cfg.Penalties.TextLength, true,
			"text is %d characters, want at least %d", n, r.cfg.MinTextRunes)
	case n > r.cfg.MaxTextRunes:
		addIssue(out, CodeTextLength, r.cfg.Penalties.TextLength, false,
			"text is %d characters, want at most %d", n, r.cfg.MaxTextRunes)
	}
}

// OptionShapeRule enforces four options keyed A-D, a valid correct key,
// option lengths and distinct option texts.
type OptionShapeRule struct{ cfg Config }

func (r *OptionShapeRule) Name() string { return "option-shape" }

func (r *OptionShapeRule) Check(d question.Draft, out *question.Outcome) {
	before := len(out.Issues)

	if len(d.Options) != len(question.OptionKeys) {
		addIssue(out, CodeOptionCount, 0, true,
			"expected %d options, got %d", len(question.OptionKeys), len(d.Options))
	} else {
		for _, key := range question.OptionKeys {
			if _, ok := d.Option(key); !ok {
				addIssue(out, CodeOptionKeys, 0, true, "option %s is missing", key)
			}
		}
	}

	if _, ok := d.Option(d.CorrectKey); !ok || d.CorrectKey == "" {
		addIssue(out, CodeCorrectKey, 0, true,
			"correct answer %q does not reference an option", firstNonEmpty(d.CorrectKey, d.RawAnswer))
	}

	seen := map[string]string{}
	for _, o := range d.Options {
		if strings.TrimSpace(o.Text) == "" {
			addIssue(out, CodeOptionEmpty, 0, true, "option %s is blank", o.Key)
			continue
		}
		n := utf8.RuneCountInString(o.Text)
		if n < r.cfg.MinOptionRunes || n > r.cfg.MaxOptionRunes {
			addIssue(out, CodeOptionLength, r.cfg.Penalties.OptionLength, false,
				"option %s is %d characters, want %d-%d", o.Key, n, r.cfg.MinOptionRunes, r.cfg.MaxOptionRunes)
		}
		norm := question.NormalizeText(o.Text)
		if prev, dup := seen[norm]; dup {
			addIssue(out, CodeDuplicateOptions, 0, true, "options %s and %s are identical", prev, o.Key)
			continue
		}
		seen[norm] = o.Key
	}

	out.SubScores[SubScoreStructure] = structureSubScore(out.Issues[before:])
}

// SimilarityRule flags option pairs that read almost the same.
type SimilarityRule struct{ cfg Config }

func (r *SimilarityRule) Name() string { return "distractor-similarity" }

func (r *SimilarityRule) Check(d question.Draft, out *question.Outcome) {
	maxSim := 0.0
	for i := 0; i < len(d.Options); i++ {
		for j := i + 1; j < len(d.Options); j++ {
			a := question.NormalizeText(d.Options[i].Text)
			b := question.NormalizeText(d.Options[j].Text)
			if a == b {
				// Reported as a duplicate by the shape rule.
				continue
			}
			sim := levenshtein.Similarity(a, b, nil)
			maxSim = max(maxSim, sim)
			if sim >= r.cfg.SimilarityThreshold {
				addIssue(out, CodeSimilarDistractors, r.cfg.Penalties.SimilarDistractors, false,
					"options %s and %s are %.0f%% similar", d.Options[i].Key, d.Options[j].Key, sim*100)
			}
		}
	}
	out.SubScores[SubScoreDistinctness] = round2(10 * (1 - maxSim))
}

// PlausibilityRule compares distractor length to the correct option.
// Distractors much shorter or longer than the answer give it away.
type PlausibilityRule struct{ cfg Config }

func (r *PlausibilityRule) Name() string { return "distractor-plausibility" }

func (r *PlausibilityRule) Check(d question.Draft, out *question.Outcome) {
	correct, ok := d.Option(d.CorrectKey)
	if !ok || d.CorrectKey == "" {
		return
	}
	cl := float64(utf8.RuneCountInString(correct.Text))
	var sum float64
	var n int
	for _, o := range d.Options {
		if o.Key == d.CorrectKey {
			continue
		}
		ol := float64(utf8.RuneCountInString(o.Text))
		if cl == 0 || ol == 0 {
			n++
			continue
		}
		sum += min(cl, ol) / max(cl, ol)
		n++
	}
	if n == 0 {
		return
	}
	avg := sum / float64(n)
	out.SubScores[SubScorePlausibility] = round2(10 * avg)
	if avg < r.cfg.MinPlausibility {
		addIssue(out, CodeLowPlausibility, r.cfg.Penalties.LowPlausibility, false,
			"distractor plausibility %.2f below %.2f", avg, r.cfg.MinPlausibility)
	}
}

// AmbiguityRule rejects true/false statements containing hedges or
// double negation.
type AmbiguityRule struct{ cfg Config }

func (r *AmbiguityRule) Name() string { return "ambiguity" }

func (r *AmbiguityRule) Check(d question.Draft, out *question.Outcome) {
	hits := FindAmbiguityMarkers(d.Text)
	per := r.cfg.Penalties.AmbiguityMarker
	out.SubScores[SubScoreClarity] = round2(max(0, 10-per*float64(len(hits))))
	if len(hits) > 0 {
		addIssue(out, CodeAmbiguityMarker, per*float64(len(hits)), true,
			"statement contains ambiguity markers: %s", strings.Join(hits, ", "))
	}
}

// BooleanAnswerRule requires a true/false answer that normalized to a
// boolean.
type BooleanAnswerRule struct{}

func (BooleanAnswerRule) Name() string { return "boolean-answer" }

func (BooleanAnswerRule) Check(d question.Draft, out *question.Outcome) {
	if d.CorrectBool == nil {
		addIssue(out, CodeAnswerNotBoolean, 0, true, "answer %q is not a boolean", d.RawAnswer)
	}
}

// ExplanationRule lightly penalises drafts without an explanation.
type ExplanationRule struct{ cfg Config }

func (r *ExplanationRule) Name() string { return "explanation" }

func (r *ExplanationRule) Check(d question.Draft, out *question.Outcome) {
	if strings.TrimSpace(d.Explanation) == "" {
		addIssue(out, CodeMissingExplanation, r.cfg.Penalties.MissingExplanation, false, "no explanation provided")
	}
}

func structureSubScore(issues []question.Issue) float64 {
	score := 10.0
	for _, is := range issues {
		if is.Fatal {
			return 0
		}
		score -= is.Penalty
	}
	return round2(max(0, score))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
