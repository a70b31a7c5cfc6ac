// ABOUTME: XP-changing operations: workouts, daily quests and loot boxes.
// ABOUTME: XP and level are persisted together, then boxes and rewards reconcile.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/storage"
)

// WorkoutResult describes the outcome of logging workout minutes.
type WorkoutResult struct {
	Profile           *models.Profile `json:"profile"`
	XPGained          int             `json:"xp_gained"`
	LeveledUp         bool            `json:"leveled_up"`
	LootBoxesGranted  int             `json:"loot_boxes_granted"`
	MinutesToNextRing int             `json:"minutes_to_next_ring"`
}

// AddWorkoutMinutes records minutes for today, awarding two XP per minute.
func (c *Coordinator) AddWorkoutMinutes(ctx context.Context, minutes int) (*WorkoutResult, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("minutes must be positive: %d", minutes)
	}

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

	xpGain := minutes * game.XPPerWorkoutMinute
	newXP := p.XP + xpGain
	newLevel := game.LevelFromXP(newXP)
	newTotal := p.TotalMinutes + minutes

	u := storage.ProfileUpdate{TotalMinutes: &newTotal}
	u.SetProgress(newXP, newLevel)
	if err := c.repo.UpdateProfile(ctx, p.ID, u); err != nil {
		return nil, persistErr("save workout", err)
	}

	oldLevel := p.Level
	p.XP = newXP
	p.Level = newLevel
	p.TotalMinutes = newTotal
	p.UpdatedAt = c.now()
	c.cacheProfile(cache, p)

	c.logMinutes(cache, minutes)
	granted := c.reconcile(cache, newLevel)

	c.log.Info("logged workout", "minutes", minutes, "xp", newXP, "level", newLevel)
	return &WorkoutResult{
		Profile:           p.Clone(),
		XPGained:          xpGain,
		LeveledUp:         newLevel > oldLevel,
		LootBoxesGranted:  granted,
		MinutesToNextRing: game.MinutesToNextLevel(newTotal),
	}, nil
}

// logMinutes merges minutes into today's workout log entry.
func (c *Coordinator) logMinutes(cache *localcache.Cache, minutes int) {
	entries, err := cache.WorkoutLog()
	if err != nil {
		c.log.Warn("read workout log", "err", err)
	}
	today := c.Today()

	merged := false
	for i := range entries {
		if entries[i].Date == today {
			entries[i].Minutes += minutes
			merged = true
			break
		}
	}
	if !merged {
		entries = append(entries, models.WorkoutLogEntry{Date: today, Minutes: minutes})
	}

	if err := cache.SetWorkoutLog(entries); err != nil {
		c.log.Warn("cache workout log", "err", err)
	}
	c.store.Publish(TopicWorkoutLog, entries)
}

// WorkoutLog returns the per-day workout log, oldest first.
func (c *Coordinator) WorkoutLog(ctx context.Context) ([]models.WorkoutLogEntry, error) {
	_, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	return cache.WorkoutLog()
}

// QuestBoard is the daily quest list with today's claim state.
type QuestBoard struct {
	Quests        []game.Quest `json:"quests"`
	ClaimedToday  bool         `json:"claimed_today"`
	NextAvailable *time.Time   `json:"next_available,omitempty"`
}

// Quests returns the quest board for today.
func (c *Coordinator) Quests(ctx context.Context) (*QuestBoard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, _, err := c.user()
	if err != nil {
		return nil, err
	}
	p, err := c.ensureProfile(ctx, sess)
	if err != nil {
		return nil, err
	}

	board := &QuestBoard{Quests: game.DailyQuests}
	today := c.Today()
	if p.ClaimedOn(today) {
		board.ClaimedToday = true
		next := c.nextDayStart(today)
		board.NextAvailable = &next
	}
	return board, nil
}

// ClaimResult describes a successful quest claim.
type ClaimResult struct {
	Quest            game.Quest      `json:"quest"`
	Profile          *models.Profile `json:"profile"`
	XPGained         int             `json:"xp_gained"`
	LeveledUp        bool            `json:"leveled_up"`
	LootBoxesGranted int             `json:"loot_boxes_granted"`
}

// ClaimQuest claims a daily quest. Only one claim is allowed per day; a
// second attempt returns a *ClaimBlockedError without changing anything.
func (c *Coordinator) ClaimQuest(ctx context.Context, questID string) (*ClaimResult, error) {
	q, err := game.FindQuest(questID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}

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

	today := c.Today()
	if p.ClaimedOn(today) {
		return nil, &ClaimBlockedError{NextAvailable: c.nextDayStart(today)}
	}

	newXP := p.XP + q.XP
	newLevel := game.LevelFromXP(newXP)
	newStat := p.StatValue(q.Category) + q.StatDelta

	u := storage.ProfileUpdate{}
	u.SetProgress(newXP, newLevel)
	u.SetStat(q.Category, newStat)
	claimed, err := c.repo.ClaimDaily(ctx, p.ID, today, u)
	if err != nil {
		return nil, persistErr("claim quest", err)
	}
	if !claimed {
		// Another device claimed between our read and write.
		return nil, &ClaimBlockedError{NextAvailable: c.nextDayStart(today)}
	}

	oldLevel := p.Level
	p.XP = newXP
	p.Level = newLevel
	p.AddStat(q.Category, q.StatDelta)
	p.LastClaim = &today
	p.UpdatedAt = c.now()
	c.cacheProfile(cache, p)

	granted := c.reconcile(cache, newLevel)

	c.log.Info("claimed quest", "quest", q.ID, "xp", newXP, "level", newLevel)
	return &ClaimResult{
		Quest:            q,
		Profile:          p.Clone(),
		XPGained:         q.XP,
		LeveledUp:        newLevel > oldLevel,
		LootBoxesGranted: granted,
	}, nil
}

// LootResult describes one opened loot box.
type LootResult struct {
	Drop             game.Drop       `json:"drop"`
	Profile          *models.Profile `json:"profile"`
	LeveledUp        bool            `json:"leveled_up"`
	LootBoxesGranted int             `json:"loot_boxes_granted"`
	Remaining        int             `json:"remaining"`
}

// OpenLootBox consumes one box and applies a weighted random drop.
// If the remote write fails the box is returned to the inventory.
func (c *Coordinator) OpenLootBox(ctx context.Context) (*LootResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	inv, err := cache.LootBoxes()
	if err != nil {
		return nil, fmt.Errorf("read loot boxes: %w", err)
	}
	if inv.Count <= 0 {
		return nil, ErrNoLootBoxes
	}

	p, err := c.ensureProfile(ctx, sess)
	if err != nil {
		return nil, err
	}

	inv.Count--
	if err := cache.SetLootBoxes(inv); err != nil {
		return nil, fmt.Errorf("consume loot box: %w", err)
	}

	drop := c.table.Roll(c.rng)
	oldLevel := p.Level

	u := storage.ProfileUpdate{}
	switch drop.Kind {
	case game.DropStat:
		u.SetStat(drop.Stat, p.StatValue(drop.Stat)+drop.Amount)
	case game.DropBonusXP:
		newXP := p.XP + drop.Amount
		u.SetProgress(newXP, game.LevelFromXP(newXP))
	}

	if err := c.repo.UpdateProfile(ctx, p.ID, u); err != nil {
		inv.Count++
		if rerr := cache.SetLootBoxes(inv); rerr != nil {
			c.log.Warn("restore loot box", "err", rerr)
		}
		return nil, persistErr("open loot box", err)
	}

	switch drop.Kind {
	case game.DropStat:
		p.AddStat(drop.Stat, drop.Amount)
	case game.DropBonusXP:
		p.XP += drop.Amount
		p.Level = game.LevelFromXP(p.XP)
	}
	p.UpdatedAt = c.now()
	c.cacheProfile(cache, p)
	c.store.Publish(TopicLootBoxes, inv)

	granted := c.reconcile(cache, p.Level)
	remaining := inv.Count + granted

	c.log.Info("opened loot box", "kind", drop.Kind, "amount", drop.Amount, "remaining", remaining)
	return &LootResult{
		Drop:             drop,
		Profile:          p.Clone(),
		LeveledUp:        p.Level > oldLevel,
		LootBoxesGranted: granted,
		Remaining:        remaining,
	}, nil
}

// LootBoxes returns the local loot-box counters.
func (c *Coordinator) LootBoxes(ctx context.Context) (models.LootBoxInventory, error) {
	_, cache, err := c.user()
	if err != nil {
		return models.LootBoxInventory{}, err
	}
	return cache.LootBoxes()
}

// AddWater adds ml to today's water total. A bucket from an earlier day is
// replaced, not added to. The remote mirror is best-effort.
func (c *Coordinator) AddWater(ctx context.Context, ml int) (models.WaterBucket, error) {
	if ml <= 0 {
		return models.WaterBucket{}, fmt.Errorf("ml must be positive: %d", ml)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return models.WaterBucket{}, err
	}

	bucket, err := cache.Water()
	if err != nil {
		c.log.Warn("read water", "err", err)
	}
	today := c.Today()
	if bucket.Date != today {
		bucket = models.WaterBucket{Date: today, ML: ml}
	} else {
		bucket.ML += ml
	}

	if err := cache.SetWater(bucket); err != nil {
		c.log.Warn("cache water", "err", err)
	}
	c.store.Publish(TopicWater, bucket)

	total := bucket.ML
	if err := c.repo.UpdateProfile(ctx, sess.UserID, storage.ProfileUpdate{WaterML: &total}); err != nil {
		c.log.Warn("mirror water", "err", err)
	}
	return bucket, nil
}

// Water returns today's water bucket.
func (c *Coordinator) Water(ctx context.Context) (models.WaterBucket, error) {
	_, cache, err := c.user()
	if err != nil {
		return models.WaterBucket{}, err
	}
	return c.todayWater(cache), nil
}

func (c *Coordinator) todayWater(cache *localcache.Cache) models.WaterBucket {
	today := c.Today()
	bucket, err := cache.Water()
	if err != nil || bucket.Date != today {
		return models.WaterBucket{Date: today}
	}
	return bucket
}
