// ABOUTME: Profile text fields and daily tracking: status, bio, macros,
// ABOUTME: habits and vitamins. Bio and macros reach the store debounced.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/storage"
)

const debouncedWriteTimeout = 10 * time.Second

// SetStatus sets the status message shown to friends.
func (c *Coordinator) SetStatus(ctx context.Context, msg string) error {
	msg = strings.TrimSpace(msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return err
	}
	if err := c.repo.UpdateProfile(ctx, sess.UserID, storage.ProfileUpdate{StatusMessage: &msg}); err != nil {
		return persistErr("save status", err)
	}

	if err := cache.SetStatus(msg); err != nil {
		c.log.Warn("cache status", "err", err)
	}
	c.store.Publish(TopicStatus, msg)

	if p, err := cache.Profile(); err == nil && p != nil {
		p.StatusMessage = msg
		c.cacheProfile(cache, p)
	}
	return nil
}

// Status returns the cached status message.
func (c *Coordinator) Status(ctx context.Context) (string, error) {
	_, cache, err := c.user()
	if err != nil {
		return "", err
	}
	return cache.Status()
}

// SetBio updates the bio locally now and remotely once typing settles.
func (c *Coordinator) SetBio(ctx context.Context, bio string) error {
	bio = strings.TrimSpace(bio)

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return err
	}
	if p, err := cache.Profile(); err == nil && p != nil {
		p.Bio = bio
		c.cacheProfile(cache, p)
	}

	userID := sess.UserID
	c.bio.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), debouncedWriteTimeout)
		defer cancel()
		if err := c.repo.UpdateProfile(ctx, userID, storage.ProfileUpdate{Bio: &bio}); err != nil {
			c.log.Warn("save bio", "user", userID, "err", err)
		}
	})
	return nil
}

// SetMacros records today's macros locally now and remotely once edits settle.
func (c *Coordinator) SetMacros(ctx context.Context, m models.Macros) error {
	if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return fmt.Errorf("macros must not be negative")
	}
	if m.Date == "" {
		m.Date = c.Today()
	}
	if !m.Date.Valid() {
		return fmt.Errorf("invalid date: %s", m.Date)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return err
	}
	if err := cache.SetMacros(m); err != nil {
		c.log.Warn("cache macros", "err", err)
	}
	c.store.Publish(TopicMacros, m)

	userID := sess.UserID
	c.macros.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), debouncedWriteTimeout)
		defer cancel()
		if err := c.repo.UpsertMacros(ctx, userID, m); err != nil {
			c.log.Warn("save macros", "user", userID, "err", err)
		}
	})
	return nil
}

// Macros returns the macros for day, preferring the local value for today.
func (c *Coordinator) Macros(ctx context.Context, day models.Day) (*models.Macros, error) {
	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	if day == "" {
		day = c.Today()
	}
	if m, err := cache.Macros(); err == nil && m.Date == day {
		return &m, nil
	}

	m, err := c.repo.GetMacros(ctx, sess.UserID, day)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Macros{Date: day}, nil
	}
	if err != nil {
		return nil, persistErr("load macros", err)
	}
	return m, nil
}

// LogHabit records whether habit was done today.
func (c *Coordinator) LogHabit(ctx context.Context, habit string, done bool) (*models.HabitLog, error) {
	habit = strings.TrimSpace(habit)
	if habit == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	sess, _, err := c.user()
	if err != nil {
		return nil, err
	}

	h := models.NewHabitLog(sess.UserID, habit, c.Today(), done)
	if err := c.repo.CreateHabitLog(ctx, h); err != nil {
		return nil, persistErr("log habit", err)
	}
	return h, nil
}

// Habits lists habit logs for day, defaulting to today.
func (c *Coordinator) Habits(ctx context.Context, day models.Day) ([]*models.HabitLog, error) {
	sess, _, err := c.user()
	if err != nil {
		return nil, err
	}
	if day == "" {
		day = c.Today()
	}
	logs, err := c.repo.ListHabitLogs(ctx, sess.UserID, day)
	if err != nil {
		return nil, persistErr("list habits", err)
	}
	return logs, nil
}

// LogVitamin records a vitamin taken today.
func (c *Coordinator) LogVitamin(ctx context.Context, name string) (*models.VitaminLog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("vitamin name is required")
	}
	sess, _, err := c.user()
	if err != nil {
		return nil, err
	}

	v := models.NewVitaminLog(sess.UserID, name, c.Today())
	if err := c.repo.CreateVitaminLog(ctx, v); err != nil {
		return nil, persistErr("log vitamin", err)
	}
	return v, nil
}

// Vitamins lists vitamins taken on day, defaulting to today.
func (c *Coordinator) Vitamins(ctx context.Context, day models.Day) ([]*models.VitaminLog, error) {
	sess, _, err := c.user()
	if err != nil {
		return nil, err
	}
	if day == "" {
		day = c.Today()
	}
	logs, err := c.repo.ListVitaminLogs(ctx, sess.UserID, day)
	if err != nil {
		return nil, persistErr("list vitamins", err)
	}
	return logs, nil
}
