package question

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request describes one generation job.
type Request struct {
	SourceText string `json:"source_text"`
	DocumentID string `json:"document_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`

	// Counts is the desired number of questions per type.
	Counts map[Type]int `json:"counts" validate:"required,dive,keys,oneof=multiple_choice true_false,endkeys,min=0"`

	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced mixed"`
	TopicFocus string     `json:"topic_focus,omitempty" validate:"max=200"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ErrNoQuestionsRequested is returned when every per-type count is zero.
var ErrNoQuestionsRequested = errors.New("at least one question type must have a count greater than zero")

// Validate checks the request shape. Source text is not checked here; the
// suitability assessor owns that decision.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid generation request: %w", err)
	}
	if r.TotalRequested() == 0 {
		return ErrNoQuestionsRequested
	}
	return nil
}

// TotalRequested sums the requested counts over all types.
func (r Request) TotalRequested() int {
	total := 0
	for _, n := range r.Counts {
		if n > 0 {
			total += n
		}
	}
	return total
}

// RequestedTypes returns the types with a positive count, in canonical order.
func (r Request) RequestedTypes() []Type {
	var out []Type
	for _, t := range Types() {
		if r.Counts[t] > 0 {
			out = append(out, t)
		}
	}
	return out
}
