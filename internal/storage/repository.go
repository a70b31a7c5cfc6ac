// ABOUTME: Repository interface for the authoritative remote record store.
// ABOUTME: Defines profile, social, and daily tracking operations.
package storage

import (
	"context"
	"errors"

	"github.com/harperreed/levelup/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the remote storage interface.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Profile operations
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, id string, u ProfileUpdate) error
	ClaimDaily(ctx context.Context, id string, day models.Day, u ProfileUpdate) (bool, error)
	ResetProfile(ctx context.Context, id string) error
	TopProfiles(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)

	// Messages
	CreateMessage(ctx context.Context, m *models.ChatMessage) error
	ListGlobalMessages(ctx context.Context, limit int) ([]*models.ChatMessage, error)
	ListDirectMessages(ctx context.Context, userID, peerID string, limit int) ([]*models.ChatMessage, error)

	// Friends
	AddFriend(ctx context.Context, userID, friendID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]*models.Profile, error)

	// Daily tracking
	UpsertMacros(ctx context.Context, userID string, m models.Macros) error
	GetMacros(ctx context.Context, userID string, day models.Day) (*models.Macros, error)
	CreateHabitLog(ctx context.Context, h *models.HabitLog) error
	ListHabitLogs(ctx context.Context, userID string, day models.Day) ([]*models.HabitLog, error)
	CreateVitaminLog(ctx context.Context, v *models.VitaminLog) error
	ListVitaminLogs(ctx context.Context, userID string, day models.Day) ([]*models.VitaminLog, error)

	// Lifecycle
	Close() error
}

// Compile-time check that DB implements Repository.
var _ Repository = (*DB)(nil)
