package question

import "context"

// Sink persists accepted questions one at a time and returns the stored id.
type Sink interface {
	Store(ctx context.Context, meta StoreMeta, q Reviewed) (string, error)
}

// StoreMeta ties a stored question back to the request and run that made it.
type StoreMeta struct {
	RunID      string
	DocumentID string
	UserID     string
}
