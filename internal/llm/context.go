package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// PurposeQuestionGen labels calls made by the question generator. The
// generator appends the question type, e.g. "question-gen:true_false".
const PurposeQuestionGen = "question-gen"

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
