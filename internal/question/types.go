package question

import (
	"fmt"
	"strings"
	"time"
)

// Type is the kind of question a draft represents. The set is closed.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
)

// Types lists every supported question type in canonical order.
func Types() []Type {
	return []Type{TypeMultipleChoice, TypeTrueFalse}
}

// ParseType maps loose spellings ("mcq", "true-false", "boolean") onto a Type.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiple_choice", "multiple-choice", "multiplechoice", "mcq", "mc":
		return TypeMultipleChoice, true
	case "true_false", "true-false", "truefalse", "boolean", "tf":
		return TypeTrueFalse, true
	}
	return "", false
}

// Difficulty is the requested or model-reported difficulty label.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyMixed        Difficulty = "mixed"
)

// ParseDifficulty normalizes a difficulty label. Common synonyms
// (easy/medium/hard) are accepted.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner", "easy", "basic":
		return DifficultyBeginner, true
	case "intermediate", "medium", "moderate":
		return DifficultyIntermediate, true
	case "advanced", "hard", "difficult":
		return DifficultyAdvanced, true
	case "mixed":
		return DifficultyMixed, true
	}
	return "", false
}

// OptionKeys are the keys used for multiple choice options, in order.
var OptionKeys = []string{"A", "B", "C", "D"}

// Option is one multiple choice answer option.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Draft is an unvalidated candidate question parsed from a model completion.
type Draft struct {
	Type Type   `json:"type"`
	Text string `json:"text"`

	// Options and CorrectKey are populated for multiple choice only.
	Options    []Option `json:"options,omitempty"`
	CorrectKey string   `json:"correct_key,omitempty"`

	// CorrectBool is populated for true/false when the model's answer
	// normalizes to a boolean. RawAnswer keeps what the model sent.
	CorrectBool *bool  `json:"correct_bool,omitempty"`
	RawAnswer   string `json:"raw_answer,omitempty"`

	Explanation string     `json:"explanation,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	Confidence  float64    `json:"confidence"`

	ChunkID int `json:"chunk_id"`

	// Seq is the arrival order of this draft across the whole batch.
	// It breaks ties so ordering never depends on goroutine scheduling.
	Seq int `json:"seq"`
}

// Clone returns a deep copy so later stages can mutate freely.
func (d Draft) Clone() Draft {
	out := d
	if d.Options != nil {
		out.Options = append([]Option(nil), d.Options...)
	}
	if d.CorrectBool != nil {
		b := *d.CorrectBool
		out.CorrectBool = &b
	}
	return out
}

// Option returns the option with the given key.
func (d Draft) Option(key string) (Option, bool) {
	for _, o := range d.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// Issue is a single validation finding against a draft.
type Issue struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Penalty float64 `json:"penalty"`

	// Rule names the quality rule that raised the issue.
	Rule string `json:"rule,omitempty"`

	// Fatal issues reject the draft regardless of its score.
	Fatal bool `json:"fatal,omitempty"`
}

// Outcome is the validation result bound to exactly one draft.
type Outcome struct {
	Passed       bool               `json:"passed"`
	Score        float64            `json:"score"`
	Issues       []Issue            `json:"issues,omitempty"`
	Enhancements []string           `json:"enhancements,omitempty"`
	SubScores    map[string]float64 `json:"sub_scores,omitempty"`
}

// Failure returns a *StructuralValidationFailure describing why the outcome
// did not pass, or nil when it passed.
func (o Outcome) Failure() error {
	if o.Passed {
		return nil
	}
	return &StructuralValidationFailure{Issues: o.Issues, Score: o.Score}
}

// Reviewed pairs an enhanced draft with its validation outcome.
type Reviewed struct {
	Draft   Draft   `json:"draft"`
	Outcome Outcome `json:"outcome"`
}

// StructuralValidationFailure describes a draft that was rejected by the
// validator, either by a fatal shape violation or a low score.
type StructuralValidationFailure struct {
	Issues []Issue
	Score  float64
}

func (e *StructuralValidationFailure) Error() string {
	var fatal []string
	for _, is := range e.Issues {
		if is.Fatal {
			fatal = append(fatal, is.Message)
		}
	}
	if len(fatal) > 0 {
		return fmt.Sprintf("structural validation failed: %s", strings.Join(fatal, "; "))
	}
	return fmt.Sprintf("quality score %.2f below acceptance threshold", e.Score)
}

// Rejection records a draft that did not make it into the accepted set.
type Rejection struct {
	Reviewed
	Reason string `json:"reason"`
}

// ErrorKind classifies an entry in the attempt log.
type ErrorKind string

const (
	KindModelInvocation ErrorKind = "model_invocation"
	KindResponseParse   ErrorKind = "response_parse"
	KindItemDropped     ErrorKind = "item_dropped"
	KindCancelled       ErrorKind = "cancelled"
)

// AttemptRecord attributes a non-fatal error to its (chunk, type, attempt).
type AttemptRecord struct {
	ChunkID int       `json:"chunk_id"`
	Type    Type      `json:"type"`
	Attempt int       `json:"attempt"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Partial reasons reported on a Result.
const (
	PartialCancelled    = "cancelled"
	PartialBatchTimeout = "batch_timeout"
)

// Result is the terminal output of one generation request.
type Result struct {
	Accepted []Reviewed  `json:"accepted"`
	Rejected []Rejection `json:"rejected"`

	// Surplus holds valid questions cut by per-type truncation.
	Surplus []Reviewed `json:"surplus,omitempty"`

	Requested    map[Type]int    `json:"requested"`
	Produced     map[Type]int    `json:"produced"`
	SuccessRatio float64         `json:"success_ratio"`
	Elapsed      time.Duration   `json:"elapsed"`
	Log          []AttemptRecord `json:"log"`

	Partial       bool   `json:"partial,omitempty"`
	PartialReason string `json:"partial_reason,omitempty"`
}
