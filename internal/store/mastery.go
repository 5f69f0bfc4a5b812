package store

import (
	"context"
	"database/sql"
	"fmt"
)

// masteryRepo implements MasteryRepo with direct SQL.
type masteryRepo struct {
	db *sql.DB
}

func (r *masteryRepo) LoadStudent(ctx context.Context, studentID string) ([]SkillMasteryRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, skill_id, estimate, confidence, attempt_count,
		        last_updated, streak, miss_streak, difficulty
		 FROM skill_mastery
		 WHERE student_id = ?
		 ORDER BY skill_id`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query mastery rows: %w", err)
	}
	defer rows.Close()

	var out []SkillMasteryRow
	for rows.Next() {
		var row SkillMasteryRow
		err := rows.Scan(
			&row.StudentID, &row.SkillID, &row.Estimate, &row.Confidence,
			&row.AttemptCount, &row.LastUpdated, &row.Streak,
			&row.MissStreak, &row.Difficulty,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mastery row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery rows: %w", err)
	}
	return out, nil
}

func (r *masteryRepo) SaveStudent(ctx context.Context, rows []SkillMasteryRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mastery save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO skill_mastery (student_id, skill_id, estimate, confidence,
		                            attempt_count, last_updated, streak,
		                            miss_streak, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (student_id, skill_id) DO UPDATE SET
		     estimate      = excluded.estimate,
		     confidence    = excluded.confidence,
		     attempt_count = excluded.attempt_count,
		     last_updated  = excluded.last_updated,
		     streak        = excluded.streak,
		     miss_streak   = excluded.miss_streak,
		     difficulty    = excluded.difficulty`,
	)
	if err != nil {
		return fmt.Errorf("prepare mastery upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.StudentID, row.SkillID, row.Estimate, row.Confidence,
			row.AttemptCount, row.LastUpdated.UTC(), row.Streak,
			row.MissStreak, row.Difficulty,
		)
		if err != nil {
			return fmt.Errorf("upsert mastery %s/%s: %w", row.StudentID, row.SkillID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mastery save: %w", err)
	}
	return nil
}
