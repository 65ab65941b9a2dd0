package questiongen

import (
	"fmt"

	"github.com/abhisek/quizgenius/internal/question"
)

// ModelInvocationError is recorded when a call fails for good, either
// because retries ran out or the failure was terminal.
type ModelInvocationError struct {
	ChunkID  int
	Type     question.Type
	Attempts int
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation for chunk %d (%s) failed after %d attempt(s): %v",
		e.ChunkID, e.Type, e.Attempts, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// ResponseParseError is recorded when a completion holds no usable
// question envelope.
type ResponseParseError struct {
	ChunkID int
	Type    question.Type
	Err     error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("parse response for chunk %d (%s): %v", e.ChunkID, e.Type, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
