package questiongen

import (
	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/question"
)

// envelopeSchema is the minimum shape a completion must have before its
// items are mapped. Items are checked one by one so that a single bad
// item does not discard its siblings.
var envelopeSchema = &llm.Schema{
	Name:        "question-envelope",
	Description: "An object holding a questions array",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{"type": "array"},
		},
		"required": []any{"questions"},
	},
}

var itemMeta = map[string]any{
	"explanation": map[string]any{
		"type":        "string",
		"description": "One or two sentences explaining why the answer is correct, citing the source text",
	},
	"difficulty": map[string]any{
		"type": "string",
		"enum": []any{"beginner", "intermediate", "advanced"},
	},
	"topic": map[string]any{
		"type":        "string",
		"description": "Short topic label for the question",
	},
	"confidence": map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     1,
		"description": "How confident you are that the question is answerable from the text alone",
	},
}

func withMeta(props map[string]any) map[string]any {
	for k, v := range itemMeta {
		props[k] = v
	}
	return props
}

// MultipleChoiceSchema constrains structured output for multiple choice
// batches.
var MultipleChoiceSchema = &llm.Schema{
	Name:        "multiple-choice-batch",
	Description: "A batch of multiple choice questions with four options each",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": withMeta(map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"A": map[string]any{"type": "string"},
								"B": map[string]any{"type": "string"},
								"C": map[string]any{"type": "string"},
								"D": map[string]any{"type": "string"},
							},
							"required":             []any{"A", "B", "C", "D"},
							"additionalProperties": false,
						},
						"correct_answer": map[string]any{
							"type": "string",
							"enum": []any{"A", "B", "C", "D"},
						},
					}),
					"required":             []any{"question", "options", "correct_answer", "explanation", "difficulty", "topic", "confidence"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// TrueFalseSchema constrains structured output for true/false batches.
var TrueFalseSchema = &llm.Schema{
	Name:        "true-false-batch",
	Description: "A batch of true/false statements",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": withMeta(map[string]any{
						"statement":      map[string]any{"type": "string"},
						"correct_answer": map[string]any{"type": "boolean"},
					}),
					"required":             []any{"statement", "correct_answer", "explanation", "difficulty", "topic", "confidence"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// schemaFor returns the structured output schema for a question type.
func schemaFor(t question.Type) *llm.Schema {
	if t == question.TypeTrueFalse {
		return TrueFalseSchema
	}
	return MultipleChoiceSchema
}
