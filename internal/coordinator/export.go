// ABOUTME: Export and import of the user's game state as JSON or YAML.
// ABOUTME: Vault image data is never exported.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData is the full export format.
type ExportData struct {
	Version    string                   `json:"version" yaml:"version"`
	ExportedAt time.Time                `json:"exported_at" yaml:"exported_at"`
	Profile    *models.Profile          `json:"profile" yaml:"profile"`
	WorkoutLog []models.WorkoutLogEntry `json:"workout_log" yaml:"workout_log"`
	Rewards    []models.Reward          `json:"rewards" yaml:"rewards"`
	LootBoxes  models.LootBoxInventory  `json:"loot_boxes" yaml:"loot_boxes"`
	Water      models.WaterBucket       `json:"water" yaml:"water"`
}

const exportVersion = "1.0"

// Export collects the signed-in user's game state.
func (c *Coordinator) Export(ctx context.Context) (*ExportData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	p, err := c.ensureProfile(ctx, sess)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Version:    exportVersion,
		ExportedAt: c.now(),
		Profile:    p,
		Water:      c.todayWater(cache),
	}
	if data.WorkoutLog, err = cache.WorkoutLog(); err != nil {
		return nil, fmt.Errorf("read workout log: %w", err)
	}
	if data.Rewards, err = cache.Rewards(); err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}
	if data.LootBoxes, err = cache.LootBoxes(); err != nil {
		return nil, fmt.Errorf("read loot boxes: %w", err)
	}
	return data, nil
}

// ExportJSON exports the game state as indented JSON.
func (c *Coordinator) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := c.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports the game state as YAML.
func (c *Coordinator) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := c.Export(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ImportJSON restores a JSON export for the signed-in user. The profile's
// level is recomputed from its XP before writing, and boxes and rewards are
// reconciled afterwards.
func (c *Coordinator) ImportJSON(ctx context.Context, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := validateImport(&data); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return err
	}

	p := data.Profile.Clone()
	p.ID = sess.UserID
	if p.DisplayName == "" {
		p.DisplayName = sess.DisplayName
	}
	p.Level = game.LevelFromXP(p.XP)
	p.UpdatedAt = c.now()
	if err := c.repo.UpsertProfile(ctx, p); err != nil {
		return persistErr("import profile", err)
	}
	c.cacheProfile(cache, p)

	if data.WorkoutLog != nil {
		if err := cache.SetWorkoutLog(data.WorkoutLog); err != nil {
			return fmt.Errorf("import workout log: %w", err)
		}
		c.store.Publish(TopicWorkoutLog, data.WorkoutLog)
	}
	if data.Rewards != nil {
		if err := cache.SetRewards(data.Rewards); err != nil {
			return fmt.Errorf("import rewards: %w", err)
		}
		c.store.Publish(TopicRewards, data.Rewards)
	}
	if err := cache.SetLootBoxes(data.LootBoxes); err != nil {
		return fmt.Errorf("import loot boxes: %w", err)
	}
	c.store.Publish(TopicLootBoxes, data.LootBoxes)

	c.reconcile(cache, p.Level)
	return nil
}

// validateImport rejects exports whose counters could not have been produced
// by play: negative totals, more boxes than the level entitles, or
// malformed log days.
func validateImport(data *ExportData) error {
	p := data.Profile
	if p == nil {
		return fmt.Errorf("%w: no profile", ErrInvalidImport)
	}
	if p.XP < 0 || p.TotalMinutes < 0 || p.WaterML < 0 {
		return fmt.Errorf("%w: negative xp, minutes or water", ErrInvalidImport)
	}
	for _, st := range models.AllStats {
		if p.StatValue(st) < 0 {
			return fmt.Errorf("%w: negative %s", ErrInvalidImport, st)
		}
	}
	if p.LastClaim != nil && !p.LastClaim.Valid() {
		return fmt.Errorf("%w: last claim %q is not a date", ErrInvalidImport, *p.LastClaim)
	}

	inv := data.LootBoxes
	if inv.Count < 0 || inv.LifetimeClaimed < 0 {
		return fmt.Errorf("%w: negative loot box counters", ErrInvalidImport)
	}
	if owed := game.LevelFromXP(p.XP) - 1; inv.LifetimeClaimed > owed {
		return fmt.Errorf("%w: %d boxes claimed but level only entitles %d", ErrInvalidImport, inv.LifetimeClaimed, owed)
	}
	if inv.Count > inv.LifetimeClaimed {
		return fmt.Errorf("%w: %d unopened boxes exceed %d claimed", ErrInvalidImport, inv.Count, inv.LifetimeClaimed)
	}

	for _, e := range data.WorkoutLog {
		if !e.Date.Valid() {
			return fmt.Errorf("%w: workout day %q is not a date", ErrInvalidImport, e.Date)
		}
		if e.Minutes < 0 {
			return fmt.Errorf("%w: negative minutes on %s", ErrInvalidImport, e.Date)
		}
	}
	for _, r := range data.Rewards {
		if r.Level < 1 {
			return fmt.Errorf("%w: reward %q has level %d", ErrInvalidImport, r.Title, r.Level)
		}
	}
	return nil
}
