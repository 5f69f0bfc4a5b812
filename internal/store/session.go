package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sessionRepo implements SessionRepo with direct SQL.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) SaveSession(ctx context.Context, session SessionRow, turns []TurnRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, student_id, state, topic, grade, difficulty,
		                       rationale, turns_used, cost_usd, started_at, last_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     state       = excluded.state,
		     topic       = excluded.topic,
		     grade       = excluded.grade,
		     difficulty  = excluded.difficulty,
		     rationale   = excluded.rationale,
		     turns_used  = excluded.turns_used,
		     cost_usd    = excluded.cost_usd,
		     last_active = excluded.last_active`,
		session.ID, session.StudentID, session.State, session.Topic,
		session.Grade, session.Difficulty, session.Rationale,
		session.TurnsUsed, session.CostUSD,
		session.StartedAt.UTC(), session.LastActive.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.ID, err)
	}

	// Turns are immutable once written; INSERT OR IGNORE makes the
	// whole-transcript checkpoint idempotent.
	for _, turn := range turns {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO session_turns (session_id, turn_index, role, content, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			turn.SessionID, turn.Index, turn.Role, turn.Content, turn.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert turn %d: %w", turn.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

func (r *sessionRepo) LoadSession(ctx context.Context, id string) (*SessionRow, []TurnRow, error) {
	var session SessionRow
	err := r.db.QueryRowContext(ctx,
		`SELECT id, student_id, state, topic, grade, difficulty, rationale,
		        turns_used, cost_usd, started_at, last_active
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&session.ID, &session.StudentID, &session.State, &session.Topic,
		&session.Grade, &session.Difficulty, &session.Rationale,
		&session.TurnsUsed, &session.CostUSD,
		&session.StartedAt, &session.LastActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query session %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, turn_index, role, content, created_at
		 FROM session_turns
		 WHERE session_id = ?
		 ORDER BY turn_index`,
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query turns for %s: %w", id, err)
	}
	defer rows.Close()

	var turns []TurnRow
	for rows.Next() {
		var turn TurnRow
		err := rows.Scan(&turn.SessionID, &turn.Index, &turn.Role, &turn.Content, &turn.CreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate turns: %w", err)
	}

	return &session, turns, nil
}
