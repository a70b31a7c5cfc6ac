// ABOUTME: Tests for the social service and open conversations.
// ABOUTME: Uses a temporary SQLite store and the in-process broker.
package social

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/realtime"
	"github.com/harperreed/levelup/internal/session"
	"github.com/harperreed/levelup/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	repo     *storage.DB
	broker   *realtime.Broker
	sessions *session.Manager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, p := range []*models.Profile{
		models.NewProfile("ada", "Ada"),
		models.NewProfile("bob", "Bob"),
		models.NewProfile("cy", "Cy"),
	} {
		require.NoError(t, db.UpsertProfile(ctx, p))
	}

	broker := realtime.NewBroker()
	sessions := session.NewManager()
	sessions.SignIn(session.Session{UserID: "ada", DisplayName: "Ada"})

	return &fixture{
		svc:      NewService(db, broker, sessions, log.New(io.Discard)),
		repo:     db,
		broker:   broker,
		sessions: sessions,
	}
}

func ptr(s string) *string { return &s }

func TestSendRequiresSession(t *testing.T) {
	f := setup(t)
	f.sessions.SignOut()

	_, err := f.svc.Send(context.Background(), "hello", nil)
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}

func TestSendRejectsEmptyText(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Send(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestSendLimitCountsCharacters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Two bytes per character, so the byte length is twice the limit.
	m, err := f.svc.Send(ctx, strings.Repeat("é", MaxMessageLength), nil)
	require.NoError(t, err)
	assert.Equal(t, MaxMessageLength, len([]rune(m.Text)))

	_, err = f.svc.Send(ctx, strings.Repeat("é", MaxMessageLength+1), nil)
	assert.Error(t, err)
}

func TestGlobalAndDirectSeparation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, "hi all", nil)
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, "hi bob", ptr("bob"))
	require.NoError(t, err)

	global, err := f.svc.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "hi all", global[0].Text)
	assert.Nil(t, global[0].RecipientID)

	direct, err := f.svc.Direct(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, "hi bob", direct[0].Text)

	// Bob sees the same pair from his side.
	f.sessions.SignIn(session.Session{UserID: "bob", DisplayName: "Bob"})
	direct, err = f.svc.Direct(ctx, "ada", 10)
	require.NoError(t, err)
	assert.Len(t, direct, 1)

	// Cy sees nothing in a conversation with Ada.
	f.sessions.SignIn(session.Session{UserID: "cy", DisplayName: "Cy"})
	direct, err = f.svc.Direct(ctx, "ada", 10)
	require.NoError(t, err)
	assert.Empty(t, direct)
}

func TestConversationReceivesRealtime(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, "before", ptr("bob"))
	require.NoError(t, err)

	var seen []string
	conv, err := f.svc.Open(ctx, ptr("bob"), func(m *models.ChatMessage) {
		seen = append(seen, m.Text)
	})
	require.NoError(t, err)
	require.Len(t, conv.Messages(), 1)

	// Reply from bob, a global message and a message between other users.
	require.NoError(t, f.broker.Publish(ctx, models.NewChatMessage("bob", "Bob", "reply", ptr("ada"))))
	require.NoError(t, f.broker.Publish(ctx, models.NewChatMessage("bob", "Bob", "global", nil)))
	require.NoError(t, f.broker.Publish(ctx, models.NewChatMessage("bob", "Bob", "to cy", ptr("cy"))))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "reply", msgs[1].Text)
	assert.Equal(t, []string{"reply"}, seen)

	conv.Close()
	conv.Close()
	require.NoError(t, f.broker.Publish(ctx, models.NewChatMessage("bob", "Bob", "late", ptr("ada"))))
	assert.Len(t, conv.Messages(), 2)
	<-conv.Done()
}

func TestConversationClosesWithContext(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	conv, err := f.svc.Open(ctx, nil, nil)
	require.NoError(t, err)
	cancel()
	<-conv.Done()

	require.NoError(t, f.broker.Publish(context.Background(), models.NewChatMessage("bob", "Bob", "late", nil)))
	assert.Empty(t, conv.Messages())
}

func TestFriendsAndLeaderboard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriend(ctx, "bob"))
	friends, err := f.svc.Friends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Bob", friends[0].DisplayName)

	require.NoError(t, f.svc.RemoveFriend(ctx, "bob"))
	assert.ErrorIs(t, f.svc.RemoveFriend(ctx, "bob"), storage.ErrNotFound)

	xp, level := 250, 3
	require.NoError(t, f.repo.UpdateProfile(ctx, "cy", storage.ProfileUpdate{XP: &xp, Level: &level}))

	board, err := f.svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "cy", board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
}
