// ABOUTME: Chat, friends and leaderboard pass-through over the remote store.
// ABOUTME: Message inserts are fanned out on the realtime channel after writing.
package social

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/realtime"
	"github.com/harperreed/levelup/internal/session"
	"github.com/harperreed/levelup/internal/storage"
)

// ErrNotAuthenticated is returned when no user is signed in.
var ErrNotAuthenticated = session.ErrNotAuthenticated

// MaxMessageLength bounds a chat message.
const MaxMessageLength = 1000

// Service is the social surface for the signed-in user.
type Service struct {
	repo     storage.Repository
	rt       realtime.Channel
	sessions *session.Manager
	log      *log.Logger
}

// NewService wires the social service.
func NewService(repo storage.Repository, rt realtime.Channel, sessions *session.Manager, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:     repo,
		rt:       rt,
		sessions: sessions,
		log:      logger.With("component", "social"),
	}
}

func (s *Service) current() (session.Session, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return session.Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

// Send writes one message. A nil recipient posts to the global channel.
// The realtime publish is best-effort; a failure is logged, not returned.
func (s *Service) Send(ctx context.Context, text string, recipientID *string) (*models.ChatMessage, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("send message: empty text")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, fmt.Errorf("send message: longer than %d characters", MaxMessageLength)
	}
	if recipientID != nil && *recipientID == "" {
		recipientID = nil
	}

	m := models.NewChatMessage(sess.UserID, sess.DisplayName, text, recipientID)
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if s.rt != nil {
		if err := s.rt.Publish(ctx, m); err != nil {
			s.log.Warn("publish message", "id", m.ID, "err", err)
		}
	}
	return m, nil
}

// Global returns recent broadcast messages, oldest first.
func (s *Service) Global(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	return s.repo.ListGlobalMessages(ctx, limit)
}

// Direct returns recent messages between the signed-in user and peer.
func (s *Service) Direct(ctx context.Context, peerID string, limit int) ([]*models.ChatMessage, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.repo.ListDirectMessages(ctx, sess.UserID, peerID, limit)
}

// AddFriend adds a directed edge from the signed-in user to friendID.
func (s *Service) AddFriend(ctx context.Context, friendID string) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	return s.repo.AddFriend(ctx, sess.UserID, friendID)
}

// RemoveFriend removes the edge to friendID.
func (s *Service) RemoveFriend(ctx context.Context, friendID string) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	return s.repo.RemoveFriend(ctx, sess.UserID, friendID)
}

// Friends lists the signed-in user's friends.
func (s *Service) Friends(ctx context.Context) ([]*models.Profile, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.repo.ListFriends(ctx, sess.UserID)
}

// Leaderboard returns the top profiles by XP.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopProfiles(ctx, limit)
}
