package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/murph/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested murph does not exist or belongs
// to another user.
var ErrNotFound = errors.New("murph not found")

const murphColumns = `id, user_id, start_time,
	first_run_distance, first_run_end_time,
	pullups, pushups, squats, exercises_end_time,
	second_run_distance, second_run_end_time,
	murph_type, duration_ms`

// InsertMurph inserts a finished session. The session UUID is the primary
// key, so a retried submission of the same session is a no-op. Returns true
// if inserted, false if the row already existed.
func (db *DB) InsertMurph(ctx context.Context, row models.MurphRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO murphs (`+murphColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO NOTHING`,
		row.ID, row.UserID, row.StartTime,
		row.FirstRunDistance, row.FirstRunEndTime,
		row.Pullups, row.Pushups, row.Squats, row.ExercisesEndTime,
		row.SecondRunDistance, row.SecondRunEndTime,
		string(row.MurphType), row.DurationMS)
	if err != nil {
		return false, fmt.Errorf("inserting murph: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryMurphs retrieves a user's session history, newest first.
func (db *DB) QueryMurphs(ctx context.Context, userID int) ([]models.MurphRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+murphColumns+` FROM murphs
		 WHERE user_id = $1
		 ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying murphs: %w", err)
	}
	defer rows.Close()

	return scanMurphRows(rows)
}

// QueryAllMurphs retrieves every user's sessions, newest first (the feed).
func (db *DB) QueryAllMurphs(ctx context.Context, limit int) ([]models.MurphRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+murphColumns+` FROM murphs
		 ORDER BY start_time DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	return scanMurphRows(rows)
}

// Leaderboard returns the fastest FULL-tier sessions started at or after
// since, fastest first.
func (db *DB) Leaderboard(ctx context.Context, since time.Time, limit int) ([]models.MurphRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+murphColumns+` FROM murphs
		 WHERE murph_type = $1 AND start_time >= $2
		 ORDER BY duration_ms ASC
		 LIMIT $3`, string(models.MurphFull), since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	return scanMurphRows(rows)
}

// DeleteMurph removes a session owned by the given user.
func (db *DB) DeleteMurph(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM murphs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting murph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMurphRows(rows pgx.Rows) ([]models.MurphRow, error) {
	var out []models.MurphRow
	for rows.Next() {
		var m models.MurphRow
		var murphType string
		err := rows.Scan(&m.ID, &m.UserID, &m.StartTime,
			&m.FirstRunDistance, &m.FirstRunEndTime,
			&m.Pullups, &m.Pushups, &m.Squats, &m.ExercisesEndTime,
			&m.SecondRunDistance, &m.SecondRunEndTime,
			&murphType, &m.DurationMS)
		if err != nil {
			return nil, fmt.Errorf("scanning murph: %w", err)
		}
		m.MurphType = models.MurphType(murphType)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
