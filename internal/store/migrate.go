package store

import (
	"database/sql"
	"fmt"
)

// schema defines every table the engine persists to. Statements are
// idempotent so Open can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS skill_mastery (
		student_id    TEXT NOT NULL,
		skill_id      TEXT NOT NULL,
		estimate      REAL NOT NULL,
		confidence    REAL NOT NULL,
		attempt_count INTEGER NOT NULL,
		last_updated  TIMESTAMP NOT NULL,
		streak        INTEGER NOT NULL DEFAULT 0,
		miss_streak   INTEGER NOT NULL DEFAULT 0,
		difficulty    INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (student_id, skill_id)
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		student_id  TEXT NOT NULL,
		state       TEXT NOT NULL,
		topic       TEXT NOT NULL DEFAULT '',
		grade       INTEGER NOT NULL DEFAULT 0,
		difficulty  INTEGER NOT NULL DEFAULT 1,
		rationale   TEXT NOT NULL DEFAULT '',
		turns_used  INTEGER NOT NULL DEFAULT 0,
		cost_usd    REAL NOT NULL DEFAULT 0,
		started_at  TIMESTAMP NOT NULL,
		last_active TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_student
		ON sessions (student_id)`,

	`CREATE TABLE IF NOT EXISTS session_turns (
		session_id TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		turn_index INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, turn_index)
	)`,

	`CREATE TABLE IF NOT EXISTS llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL,
		timestamp     TIMESTAMP NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_llm_events_sequence
		ON llm_events (sequence)`,

	`CREATE TABLE IF NOT EXISTS answer_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence       INTEGER NOT NULL,
		timestamp      TIMESTAMP NOT NULL,
		student_id     TEXT NOT NULL,
		topic          TEXT NOT NULL,
		problem_id     TEXT NOT NULL,
		difficulty     INTEGER NOT NULL,
		submitted      TEXT NOT NULL,
		correct        INTEGER NOT NULL,
		partial_credit REAL NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_answer_events_student
		ON answer_events (student_id, topic)`,
}

// migrate creates any missing tables and indexes.
func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
