// ABOUTME: Profile read, upsert and partial update operations for SQLite storage.
// ABOUTME: XP and level are always written together in a single statement.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/levelup/internal/models"
)

const profileColumns = `id, display_name, level, xp, total_minutes, strength, speed, defense, focus,
	water_ml, last_claim, status_message, bio, updated_at`

// ProfileUpdate is a partial update. Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName    *string
	XP             *int
	Level          *int
	TotalMinutes   *int
	Strength       *int
	Speed          *int
	Defense        *int
	Focus          *int
	WaterML        *int
	LastClaim      *models.Day
	ClearLastClaim bool
	StatusMessage  *string
	Bio            *string
}

// SetStat sets the column for the named attribute.
func (u *ProfileUpdate) SetStat(s models.Stat, v int) {
	switch s {
	case models.StatStrength:
		u.Strength = &v
	case models.StatSpeed:
		u.Speed = &v
	case models.StatDefense:
		u.Defense = &v
	case models.StatFocus:
		u.Focus = &v
	}
}

// SetProgress sets xp and the level derived from it.
func (u *ProfileUpdate) SetProgress(xp, level int) {
	u.XP = &xp
	u.Level = &level
}

func (u ProfileUpdate) assignments() ([]string, []any, error) {
	if (u.XP == nil) != (u.Level == nil) {
		return nil, nil, fmt.Errorf("xp and level must be updated together")
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.DisplayName != nil {
		add("display_name", *u.DisplayName)
	}
	if u.XP != nil {
		add("xp", *u.XP)
		add("level", *u.Level)
	}
	if u.TotalMinutes != nil {
		add("total_minutes", *u.TotalMinutes)
	}
	if u.Strength != nil {
		add("strength", *u.Strength)
	}
	if u.Speed != nil {
		add("speed", *u.Speed)
	}
	if u.Defense != nil {
		add("defense", *u.Defense)
	}
	if u.Focus != nil {
		add("focus", *u.Focus)
	}
	if u.WaterML != nil {
		add("water_ml", *u.WaterML)
	}
	if u.ClearLastClaim {
		sets = append(sets, "last_claim = NULL")
	} else if u.LastClaim != nil {
		add("last_claim", string(*u.LastClaim))
	}
	if u.StatusMessage != nil {
		add("status_message", *u.StatusMessage)
	}
	if u.Bio != nil {
		add("bio", *u.Bio)
	}

	if len(sets) == 0 {
		return nil, nil, fmt.Errorf("empty profile update")
	}
	add("updated_at", time.Now().UTC().Format(time.RFC3339))
	return sets, args, nil
}

// GetProfile retrieves a profile by ID.
func (d *DB) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	p, err := scanProfile(d.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpsertProfile inserts a profile or replaces every column of an existing one.
func (d *DB) UpsertProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, level, xp, total_minutes, strength, speed, defense, focus,
			water_ml, last_claim, status_message, bio, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			level = excluded.level,
			xp = excluded.xp,
			total_minutes = excluded.total_minutes,
			strength = excluded.strength,
			speed = excluded.speed,
			defense = excluded.defense,
			focus = excluded.focus,
			water_ml = excluded.water_ml,
			last_claim = excluded.last_claim,
			status_message = excluded.status_message,
			bio = excluded.bio,
			updated_at = excluded.updated_at
	`
	var lastClaim sql.NullString
	if p.LastClaim != nil {
		lastClaim = sql.NullString{String: string(*p.LastClaim), Valid: true}
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := d.db.ExecContext(ctx, query,
		p.ID,
		p.DisplayName,
		p.Level,
		p.XP,
		p.TotalMinutes,
		p.Strength,
		p.Speed,
		p.Defense,
		p.Focus,
		p.WaterML,
		lastClaim,
		p.StatusMessage,
		p.Bio,
		updatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial update to one profile row.
func (d *DB) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) error {
	sets, args, err := u.assignments()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ClaimDaily applies u and stamps last_claim = day in one statement, but only
// if the profile has not already claimed on day. It reports whether the row
// was updated; false means the claim was already taken (or the row is missing).
func (d *DB) ClaimDaily(ctx context.Context, id string, day models.Day, u ProfileUpdate) (bool, error) {
	u.LastClaim = &day
	u.ClearLastClaim = false
	sets, args, err := u.assignments()
	if err != nil {
		return false, fmt.Errorf("claim daily: %w", err)
	}

	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND (last_claim IS NULL OR last_claim <> ?)`
	args = append(args, id, string(day))

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim daily: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim daily: %w", err)
	}
	return affected == 1, nil
}

// ResetProfile zeroes every gamification field of a profile.
func (d *DB) ResetProfile(ctx context.Context, id string) error {
	query := `
		UPDATE profiles SET
			level = 1, xp = 0, total_minutes = 0,
			strength = 0, speed = 0, defense = 0, focus = 0,
			water_ml = 0, last_claim = NULL, status_message = '',
			updated_at = ?
		WHERE id = ?
	`
	result, err := d.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// TopProfiles returns the leaderboard ordered by XP descending.
func (d *DB) TopProfiles(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `SELECT id, display_name, level, xp FROM profiles ORDER BY xp DESC, display_name ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top profiles: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		e := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Level, &e.XP); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile scans a single row into a Profile struct.
func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var lastClaim sql.NullString
	var updatedAt sql.NullString

	err := row.Scan(&p.ID, &p.DisplayName, &p.Level, &p.XP, &p.TotalMinutes,
		&p.Strength, &p.Speed, &p.Defense, &p.Focus, &p.WaterML,
		&lastClaim, &p.StatusMessage, &p.Bio, &updatedAt)
	if err != nil {
		return nil, err
	}

	if lastClaim.Valid {
		day := models.Day(lastClaim.String)
		p.LastClaim = &day
	}
	if updatedAt.Valid {
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}
	return &p, nil
}
