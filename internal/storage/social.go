// ABOUTME: Message and friendship operations for SQLite storage.
// ABOUTME: Direct messages are matched symmetrically on the sender/recipient pair.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/levelup/internal/models"
)

// CreateMessage stores a chat message.
func (d *DB) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO messages (id, user_id, display_name, text, recipient_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var recipient sql.NullString
	if m.RecipientID != nil {
		recipient = sql.NullString{String: *m.RecipientID, Valid: true}
	}

	_, err := d.db.ExecContext(ctx, query,
		m.ID,
		m.UserID,
		m.DisplayName,
		m.Text,
		recipient,
		m.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListGlobalMessages returns the most recent broadcast messages, oldest first.
func (d *DB) ListGlobalMessages(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, display_name, text, recipient_id, created_at
		FROM messages
		WHERE recipient_id IS NULL
		ORDER BY created_at DESC
	`
	return d.listMessages(ctx, query, limit)
}

// ListDirectMessages returns the most recent messages between two users, oldest first.
func (d *DB) ListDirectMessages(ctx context.Context, userID, peerID string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, display_name, text, recipient_id, created_at
		FROM messages
		WHERE (user_id = ? AND recipient_id = ?) OR (user_id = ? AND recipient_id = ?)
		ORDER BY created_at DESC
	`
	return d.listMessages(ctx, query, limit, userID, peerID, peerID, userID)
}

func (d *DB) listMessages(ctx context.Context, query string, limit int, args ...any) ([]*models.ChatMessage, error) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var recipient sql.NullString
		var createdAt string

		if err := rows.Scan(&m.ID, &m.UserID, &m.DisplayName, &m.Text, &recipient, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if recipient.Valid {
			r := recipient.String
			m.RecipientID = &r
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AddFriend creates a directed friendship edge. Adding twice is a no-op.
func (d *DB) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return fmt.Errorf("add friend: cannot befriend yourself")
	}
	query := `
		INSERT INTO friends (user_id, friend_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, friend_id) DO NOTHING
	`
	_, err := d.db.ExecContext(ctx, query, userID, friendID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add friend: %w", err)
	}
	return nil
}

// RemoveFriend deletes a directed friendship edge.
func (d *DB) RemoveFriend(ctx context.Context, userID, friendID string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM friends WHERE user_id = ? AND friend_id = ?", userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, friendID)
	}
	return nil
}

// ListFriends returns the profiles the user has an edge to. Friends without
// a profile row are returned with only their ID set.
func (d *DB) ListFriends(ctx context.Context, userID string) ([]*models.Profile, error) {
	query := `
		SELECT f.friend_id, COALESCE(p.display_name, ''), COALESCE(p.level, 1), COALESCE(p.xp, 0),
			COALESCE(p.status_message, '')
		FROM friends f
		LEFT JOIN profiles p ON p.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY f.created_at ASC, f.friend_id ASC
	`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Level, &p.XP, &p.StatusMessage); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, &p)
	}
	return friends, rows.Err()
}
