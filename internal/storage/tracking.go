// ABOUTME: Macros, habit log and vitamin log operations for SQLite storage.
// ABOUTME: Rows are keyed by user and calendar day.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/levelup/internal/models"
)

// UpsertMacros replaces the macro totals for a user and day.
func (d *DB) UpsertMacros(ctx context.Context, userID string, m models.Macros) error {
	query := `
		INSERT INTO macros (user_id, date, calories, protein, carbs, fat)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat
	`
	_, err := d.db.ExecContext(ctx, query, userID, string(m.Date), m.Calories, m.Protein, m.Carbs, m.Fat)
	if err != nil {
		return fmt.Errorf("upsert macros: %w", err)
	}
	return nil
}

// GetMacros returns the macro totals for a user and day.
func (d *DB) GetMacros(ctx context.Context, userID string, day models.Day) (*models.Macros, error) {
	query := `SELECT date, calories, protein, carbs, fat FROM macros WHERE user_id = ? AND date = ?`

	var m models.Macros
	var date string
	err := d.db.QueryRowContext(ctx, query, userID, string(day)).Scan(&date, &m.Calories, &m.Protein, &m.Carbs, &m.Fat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: macros for %s", ErrNotFound, day)
		}
		return nil, fmt.Errorf("get macros: %w", err)
	}
	m.Date = models.Day(date)
	return &m, nil
}

// CreateHabitLog stores a habit log entry.
func (d *DB) CreateHabitLog(ctx context.Context, h *models.HabitLog) error {
	query := `
		INSERT INTO habit_logs (id, user_id, habit, date, done, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		h.ID.String(), h.UserID, h.Habit, string(h.Date), h.Done, h.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create habit log: %w", err)
	}
	return nil
}

// ListHabitLogs returns a user's habit logs for a day in the order added.
func (d *DB) ListHabitLogs(ctx context.Context, userID string, day models.Day) ([]*models.HabitLog, error) {
	query := `
		SELECT id, user_id, habit, date, done, created_at
		FROM habit_logs
		WHERE user_id = ? AND date = ?
		ORDER BY created_at ASC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, string(day))
	if err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.HabitLog
	for rows.Next() {
		var h models.HabitLog
		var idStr, date, createdAt string
		if err := rows.Scan(&idStr, &h.UserID, &h.Habit, &date, &h.Done, &createdAt); err != nil {
			return nil, fmt.Errorf("scan habit log: %w", err)
		}
		h.ID, _ = uuid.Parse(idStr)
		h.Date = models.Day(date)
		h.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		logs = append(logs, &h)
	}
	return logs, rows.Err()
}

// CreateVitaminLog stores a vitamin log entry.
func (d *DB) CreateVitaminLog(ctx context.Context, v *models.VitaminLog) error {
	query := `
		INSERT INTO vitamins (id, user_id, name, date, taken, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		v.ID.String(), v.UserID, v.Name, string(v.Date), v.Taken, v.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create vitamin log: %w", err)
	}
	return nil
}

// ListVitaminLogs returns a user's vitamin logs for a day in the order added.
func (d *DB) ListVitaminLogs(ctx context.Context, userID string, day models.Day) ([]*models.VitaminLog, error) {
	query := `
		SELECT id, user_id, name, date, taken, created_at
		FROM vitamins
		WHERE user_id = ? AND date = ?
		ORDER BY created_at ASC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, string(day))
	if err != nil {
		return nil, fmt.Errorf("list vitamin logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.VitaminLog
	for rows.Next() {
		var v models.VitaminLog
		var idStr, date, createdAt string
		if err := rows.Scan(&idStr, &v.UserID, &v.Name, &date, &v.Taken, &createdAt); err != nil {
			return nil, fmt.Errorf("scan vitamin log: %w", err)
		}
		v.ID, _ = uuid.Parse(idStr)
		v.Date = models.Day(date)
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		logs = append(logs, &v)
	}
	return logs, rows.Err()
}
