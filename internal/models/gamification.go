// ABOUTME: Local gamification models: workout log, rewards, loot boxes, vault.
// ABOUTME: These values live in the device cache; only the profile is remote.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutLogEntry is the minutes logged on one calendar day.
type WorkoutLogEntry struct {
	Date    Day `json:"date" yaml:"date"`
	Minutes int `json:"minutes" yaml:"minutes"`
}

// Reward is a user-defined unlock gated by level.
type Reward struct {
	ID          string `json:"id" yaml:"id"`
	Level       int    `json:"level" yaml:"level"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Unlocked    bool   `json:"unlocked" yaml:"unlocked"`
}

// NewReward creates a locked reward with a generated ID.
func NewReward(level int, title, description string) *Reward {
	if level < 1 {
		level = 1
	}
	return &Reward{
		ID:          uuid.New().String(),
		Level:       level,
		Title:       title,
		Description: description,
	}
}

// DefaultRewards returns the reward list a fresh or wiped account starts with.
func DefaultRewards() []Reward {
	return []Reward{
		{ID: "default-1", Level: 2, Title: "Cheat Meal", Description: "One guilt-free meal of your choice"},
		{ID: "default-2", Level: 5, Title: "New Playlist", Description: "Build a workout playlist"},
		{ID: "default-3", Level: 10, Title: "New Gear", Description: "Treat yourself to new training gear"},
		{ID: "default-4", Level: 20, Title: "Rest Day Trip", Description: "A day out, no training"},
	}
}

// LootBoxInventory counts unopened boxes and every box ever granted.
type LootBoxInventory struct {
	Count           int `json:"count" yaml:"count"`
	LifetimeClaimed int `json:"lifetime_claimed" yaml:"lifetime_claimed"`
}

// VaultImage is an image stored only on this device.
type VaultImage struct {
	ID      string    `json:"id" yaml:"id"`
	Src     string    `json:"src" yaml:"-"`
	Title   string    `json:"title" yaml:"title"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// NewVaultImage creates a vault image with a generated ID and timestamp.
func NewVaultImage(src, title string) *VaultImage {
	return &VaultImage{
		ID:      uuid.New().String(),
		Src:     src,
		Title:   title,
		AddedAt: time.Now(),
	}
}

// WaterBucket is the running water total for a single day.
type WaterBucket struct {
	Date Day `json:"date"`
	ML   int `json:"ml"`
}
