package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizgenius/internal/question"
)

// QuestionRepo persists accepted questions. It implements question.Sink.
type QuestionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ question.Sink = (*QuestionRepo)(nil)

// StoredQuestion is a question row joined with its provenance.
type StoredQuestion struct {
	ID         string
	Sequence   int64
	RunID      string
	DocumentID string
	UserID     string
	CreatedAt  time.Time
	question.Reviewed
}

// QuestionFilter narrows List results. Zero values match everything.
type QuestionFilter struct {
	RunID      string
	DocumentID string
	Type       question.Type
	Limit      int
}

// Store inserts one reviewed question and returns its generated id.
func (r *QuestionRepo) Store(ctx context.Context, meta question.StoreMeta, q question.Reviewed) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	options, err := json.Marshal(q.Draft.Options)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	issues, err := json.Marshal(q.Outcome.Issues)
	if err != nil {
		return "", fmt.Errorf("marshal issues: %w", err)
	}

	var correctBool sql.NullBool
	if q.Draft.CorrectBool != nil {
		correctBool = sql.NullBool{Bool: *q.Draft.CorrectBool, Valid: true}
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `INSERT INTO questions (
			id, sequence, run_id, document_id, user_id, created_at,
			type, text, options, correct_key, correct_bool,
			explanation, difficulty, topic, confidence, chunk_id, score, issues
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, seqNum, meta.RunID, meta.DocumentID, meta.UserID, time.Now().UTC().UnixMilli(),
		string(q.Draft.Type), q.Draft.Text, string(options), q.Draft.CorrectKey, correctBool,
		q.Draft.Explanation, string(q.Draft.Difficulty), q.Draft.Topic, q.Draft.Confidence,
		q.Draft.ChunkID, q.Outcome.Score, string(issues),
	)
	if err != nil {
		return "", fmt.Errorf("insert question: %w", err)
	}
	return id, nil
}

// List returns stored questions oldest first.
func (r *QuestionRepo) List(ctx context.Context, f QuestionFilter) ([]StoredQuestion, error) {
	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.DocumentID != "" {
		where = append(where, "document_id = ?")
		args = append(args, f.DocumentID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	var q strings.Builder
	q.WriteString(`SELECT id, sequence, run_id, document_id, user_id, created_at,
		type, text, options, correct_key, correct_bool,
		explanation, difficulty, topic, confidence, chunk_id, score, issues
		FROM questions`)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY sequence ASC")
	if f.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []StoredQuestion
	for rows.Next() {
		var (
			sq          StoredQuestion
			createdAt   int64
			typ, diff   string
			options     string
			issues      string
			correctBool sql.NullBool
		)
		err := rows.Scan(&sq.ID, &sq.Sequence, &sq.RunID, &sq.DocumentID, &sq.UserID, &createdAt,
			&typ, &sq.Draft.Text, &options, &sq.Draft.CorrectKey, &correctBool,
			&sq.Draft.Explanation, &diff, &sq.Draft.Topic, &sq.Draft.Confidence,
			&sq.Draft.ChunkID, &sq.Outcome.Score, &issues)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		sq.CreatedAt = time.UnixMilli(createdAt).UTC()
		sq.Draft.Type = question.Type(typ)
		sq.Draft.Difficulty = question.Difficulty(diff)
		if correctBool.Valid {
			b := correctBool.Bool
			sq.Draft.CorrectBool = &b
		}
		if err := json.Unmarshal([]byte(options), &sq.Draft.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", sq.ID, err)
		}
		if err := json.Unmarshal([]byte(issues), &sq.Outcome.Issues); err != nil {
			return nil, fmt.Errorf("decode issues for %s: %w", sq.ID, err)
		}
		sq.Outcome.Passed = true
		out = append(out, sq)
	}
	return out, rows.Err()
}
