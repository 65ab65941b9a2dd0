package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL,
		timestamp     INTEGER NOT NULL,
		provider      TEXT    NOT NULL,
		model         TEXT    NOT NULL,
		purpose       TEXT    NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT    NOT NULL DEFAULT '',
		request_body  TEXT    NOT NULL DEFAULT '',
		response_body TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events (purpose)`,

	`CREATE TABLE IF NOT EXISTS generation_runs (
		id             TEXT    PRIMARY KEY,
		sequence       INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		document_id    TEXT    NOT NULL DEFAULT '',
		user_id        TEXT    NOT NULL DEFAULT '',
		state          TEXT    NOT NULL,
		requested      INTEGER NOT NULL DEFAULT 0,
		accepted       INTEGER NOT NULL DEFAULT 0,
		rejected       INTEGER NOT NULL DEFAULT 0,
		success_ratio  REAL    NOT NULL DEFAULT 0,
		elapsed_ms     INTEGER NOT NULL DEFAULT 0,
		partial        INTEGER NOT NULL DEFAULT 0,
		partial_reason TEXT    NOT NULL DEFAULT '',
		error_count    INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id           TEXT    PRIMARY KEY,
		sequence     INTEGER NOT NULL,
		run_id       TEXT    NOT NULL DEFAULT '',
		document_id  TEXT    NOT NULL DEFAULT '',
		user_id      TEXT    NOT NULL DEFAULT '',
		created_at   INTEGER NOT NULL,
		type         TEXT    NOT NULL,
		text         TEXT    NOT NULL,
		options      TEXT    NOT NULL DEFAULT '[]',
		correct_key  TEXT    NOT NULL DEFAULT '',
		correct_bool INTEGER,
		explanation  TEXT    NOT NULL DEFAULT '',
		difficulty   TEXT    NOT NULL DEFAULT '',
		topic        TEXT    NOT NULL DEFAULT '',
		confidence   REAL    NOT NULL DEFAULT 0,
		chunk_id     INTEGER NOT NULL DEFAULT 0,
		score        REAL    NOT NULL DEFAULT 0,
		issues       TEXT    NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_run ON questions (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_document ON questions (document_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
