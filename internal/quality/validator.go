// Package quality validates, enhances and scores draft questions.
package quality

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/quizgenius/internal/question"
)

// Validator applies per-type rules to drafts. It holds no mutable state
// and is safe for concurrent use.
type Validator struct {
	cfg   Config
	rules map[question.Type][]Rule
}

// New creates a Validator with the standard rule sets.
func New(cfg Config) *Validator {
	return &Validator{
		cfg: cfg,
		rules: map[question.Type][]Rule{
			question.TypeMultipleChoice: {
				&TextLengthRule{cfg: cfg},
				&OptionShapeRule{cfg: cfg},
				&SimilarityRule{cfg: cfg},
				&PlausibilityRule{cfg: cfg},
				&ExplanationRule{cfg: cfg},
			},
			question.TypeTrueFalse: {
				&TextLengthRule{cfg: cfg},
				BooleanAnswerRule{},
				&AmbiguityRule{cfg: cfg},
				&ExplanationRule{cfg: cfg},
			},
		},
	}
}

// Validate scores a draft. The score is
// clamp(0, 10, 10 - penalties + length bonus); the draft passes when no
// issue is fatal and the score reaches the acceptance threshold.
func (v *Validator) Validate(d question.Draft) question.Outcome {
	out := question.Outcome{SubScores: map[string]float64{}}

	rules, ok := v.rules[d.Type]
	if !ok {
		addIssue(&out, CodeUnknownType, 0, true, "unsupported question type %q", d.Type)
		return out
	}
	for _, r := range rules {
		before := len(out.Issues)
		r.Check(d, &out)
		for i := before; i < len(out.Issues); i++ {
			out.Issues[i].Rule = r.Name()
		}
	}

	score := 10.0
	fatal := false
	for _, is := range out.Issues {
		score -= is.Penalty
		fatal = fatal || is.Fatal
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(d.Text)); n >= v.cfg.OptimalMinRunes && n <= v.cfg.OptimalMaxRunes {
		score += v.cfg.LengthBonus
	}
	out.Score = round2(math.Max(0, math.Min(10, score)))
	out.Passed = !fatal && out.Score >= v.cfg.AcceptThreshold
	return out
}

// Enhance applies formatting-only fixes and lists what it changed. The
// answer, option keys and option membership are never modified.
func (v *Validator) Enhance(d question.Draft) (question.Draft, []string) {
	d = d.Clone()
	var applied []string
	note := func(s string) {
		for _, a := range applied {
			if a == s {
				return
			}
		}
		applied = append(applied, s)
	}

	text := collapseSpaces(d.Text)
	if text != d.Text {
		note("normalized whitespace")
	}
	if c := capitalizeFirst(text); c != text {
		text = c
		note("capitalized first letter")
	}
	if p := ensureTerminal(text, d.Type); p != text {
		text = p
		note("added terminal punctuation")
	}
	d.Text = text

	for i, o := range d.Options {
		if t := collapseSpaces(o.Text); t != o.Text {
			d.Options[i].Text = t
			note("normalized option whitespace")
		}
	}
	if e := collapseSpaces(d.Explanation); e != d.Explanation {
		d.Explanation = e
		note("normalized explanation whitespace")
	}
	return d, applied
}

// Review enhances a draft and validates the result.
func (v *Validator) Review(d question.Draft) question.Reviewed {
	enhanced, applied := v.Enhance(d)
	out := v.Validate(enhanced)
	out.Enhancements = applied
	return question.Reviewed{Draft: enhanced, Outcome: out}
}

// ReviewAll reviews drafts in order.
func (v *Validator) ReviewAll(drafts []question.Draft) []question.Reviewed {
	out := make([]question.Reviewed, len(drafts))
	for i, d := range drafts {
		out[i] = v.Review(d)
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capitalizeFirst upper-cases a leading lowercase letter unless the next
// rune is upper case, which keeps tokens like "pH" or "mRNA" intact.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func ensureTerminal(s string, t question.Type) string {
	if s == "" {
		return s
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	switch last {
	case '?', '.', '!', ':':
		return s
	}
	if t == question.TypeTrueFalse {
		return s + "."
	}
	return s + "?"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
