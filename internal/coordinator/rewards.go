// ABOUTME: User-defined rewards gated by level.
// ABOUTME: Every change re-runs the unlock sync against the current level.
package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/session"
)

// RewardEdit is a partial reward update. Nil fields are unchanged.
type RewardEdit struct {
	Level       *int
	Title       *string
	Description *string
}

// Rewards returns the reward list.
func (c *Coordinator) Rewards(ctx context.Context) ([]models.Reward, error) {
	_, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	return cache.Rewards()
}

// AddReward creates a reward unlocked at level. It is unlocked immediately
// when the user is already at or above that level.
func (c *Coordinator) AddReward(ctx context.Context, level int, title, description string) (*models.Reward, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("reward title is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	rewards, err := cache.Rewards()
	if err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}

	r := models.NewReward(level, title, strings.TrimSpace(description))
	rewards = append(rewards, *r)

	synced, err := c.saveRewards(ctx, sess, cache, rewards)
	if err != nil {
		return nil, err
	}
	out := synced[len(synced)-1]
	return &out, nil
}

// EditReward applies e to the reward with id. Lowering the level may unlock
// it; raising it never locks an unlocked reward again.
func (c *Coordinator) EditReward(ctx context.Context, id string, e RewardEdit) (*models.Reward, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	rewards, err := cache.Rewards()
	if err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}

	idx := findReward(rewards, id)
	if idx < 0 {
		return nil, fmt.Errorf("reward not found: %s", id)
	}
	r := &rewards[idx]
	if e.Level != nil {
		r.Level = max(*e.Level, 1)
	}
	if e.Title != nil {
		title := strings.TrimSpace(*e.Title)
		if title == "" {
			return nil, fmt.Errorf("reward title is required")
		}
		r.Title = title
	}
	if e.Description != nil {
		r.Description = strings.TrimSpace(*e.Description)
	}

	synced, err := c.saveRewards(ctx, sess, cache, rewards)
	if err != nil {
		return nil, err
	}
	out := synced[idx]
	return &out, nil
}

// DeleteReward removes the reward with id.
func (c *Coordinator) DeleteReward(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, cache, err := c.user()
	if err != nil {
		return err
	}
	rewards, err := cache.Rewards()
	if err != nil {
		return fmt.Errorf("read rewards: %w", err)
	}

	idx := findReward(rewards, id)
	if idx < 0 {
		return fmt.Errorf("reward not found: %s", id)
	}
	rewards = append(rewards[:idx], rewards[idx+1:]...)
	if err := cache.SetRewards(rewards); err != nil {
		return fmt.Errorf("save rewards: %w", err)
	}
	c.store.Publish(TopicRewards, rewards)
	return nil
}

// findReward matches a full ID or a unique prefix of at least 6 characters.
func findReward(rewards []models.Reward, id string) int {
	return findByID(len(rewards), func(i int) string { return rewards[i].ID }, id)
}

// findByID returns the index whose ID equals id, or the single index whose
// ID starts with id when id has at least six characters. It returns -1
// otherwise.
func findByID(n int, idAt func(int) string, id string) int {
	for i := 0; i < n; i++ {
		if idAt(i) == id {
			return i
		}
	}
	if len(id) < 6 {
		return -1
	}
	found := -1
	for i := 0; i < n; i++ {
		if strings.HasPrefix(idAt(i), id) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

func (c *Coordinator) saveRewards(ctx context.Context, sess session.Session, cache *localcache.Cache, rewards []models.Reward) ([]models.Reward, error) {
	level := 1
	if p, err := cache.Profile(); err == nil && p != nil {
		level = p.Level
	} else if p, err := c.ensureProfile(ctx, sess); err == nil {
		level = p.Level
	} else {
		return nil, err
	}

	synced, _ := game.SyncRewards(rewards, level)
	if err := cache.SetRewards(synced); err != nil {
		return nil, fmt.Errorf("save rewards: %w", err)
	}
	c.store.Publish(TopicRewards, synced)
	return synced, nil
}
