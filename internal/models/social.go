// ABOUTME: Social models for chat, friendships, and the leaderboard.
// ABOUTME: A nil recipient on a chat message means the global channel.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one row in the messages table.
type ChatMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	RecipientID *string   `json:"recipient_id,omitempty"`
}

// NewChatMessage creates a message with a generated ID and timestamp.
func NewChatMessage(userID, displayName, text string, recipientID *string) *ChatMessage {
	return &ChatMessage{
		ID:          uuid.New().String(),
		UserID:      userID,
		DisplayName: displayName,
		Text:        text,
		CreatedAt:   time.Now(),
		RecipientID: recipientID,
	}
}

// IsBroadcast reports whether the message was sent to the global channel.
func (m *ChatMessage) IsBroadcast() bool {
	return m.RecipientID == nil
}

// BelongsTo reports whether the message is part of the conversation
// between self and peer. A nil peer selects the global channel.
func (m *ChatMessage) BelongsTo(self string, peer *string) bool {
	if peer == nil {
		return m.RecipientID == nil
	}
	if m.RecipientID == nil {
		return false
	}
	return (m.UserID == self && *m.RecipientID == *peer) ||
		(m.UserID == *peer && *m.RecipientID == self)
}

// Friendship is a directed edge from UserID to FriendID.
type Friendship struct {
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}
