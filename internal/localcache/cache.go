// ABOUTME: Device-local cache of last-known values, one key per feature.
// ABOUTME: Values are JSON blobs namespaced by user ID.
package localcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/harperreed/levelup/internal/models"
)

// Feature keys.
const (
	KeyProfile         = "profile"
	KeyWater           = "water"
	KeyStatus          = "status"
	KeyRewards         = "rewards"
	KeyWorkoutLog      = "workout_log"
	KeyVaultImages     = "vault_images"
	KeyVaultPIN        = "vault_pin"
	KeyLootBoxCount    = "lootbox_count"
	KeyLootBoxLifetime = "lootbox_lifetime"
	KeyMacros          = "macros"
)

// Cache reads and writes feature values for one user.
type Cache struct {
	backend Backend
	ns      string
}

// New returns a cache for userID on top of backend.
func New(backend Backend, userID string) *Cache {
	return &Cache{backend: backend, ns: userID + ":"}
}

// Key returns the full backend key for a feature.
func (c *Cache) Key(feature string) string {
	return c.ns + feature
}

// Sync pushes and pulls the backend if it supports it.
func (c *Cache) Sync() error {
	return c.backend.Sync()
}

// getJSON loads a feature value. ok is false when nothing is cached.
func getJSON[T any](c *Cache, feature string) (T, bool, error) {
	var v T
	data, err := c.backend.Get([]byte(c.Key(feature)))
	if err != nil {
		if errors.Is(err, ErrMissing) {
			return v, false, nil
		}
		return v, false, fmt.Errorf("get %s: %w", feature, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("unmarshal %s: %w", feature, err)
	}
	return v, true, nil
}

func (c *Cache) setJSON(feature string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", feature, err)
	}
	if err := c.backend.Set([]byte(c.Key(feature)), data); err != nil {
		return fmt.Errorf("set %s: %w", feature, err)
	}
	return nil
}

// Profile returns the cached profile snapshot, or nil.
func (c *Cache) Profile() (*models.Profile, error) {
	p, ok, err := getJSON[models.Profile](c, KeyProfile)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetProfile caches a profile snapshot.
func (c *Cache) SetProfile(p *models.Profile) error {
	return c.setJSON(KeyProfile, p)
}

// Water returns the cached water bucket.
func (c *Cache) Water() (models.WaterBucket, error) {
	w, _, err := getJSON[models.WaterBucket](c, KeyWater)
	return w, err
}

// SetWater caches the water bucket.
func (c *Cache) SetWater(w models.WaterBucket) error {
	return c.setJSON(KeyWater, w)
}

// Status returns the cached status message.
func (c *Cache) Status() (string, error) {
	s, _, err := getJSON[string](c, KeyStatus)
	return s, err
}

// SetStatus caches the status message.
func (c *Cache) SetStatus(s string) error {
	return c.setJSON(KeyStatus, s)
}

// Rewards returns the cached reward list, or the defaults if none is cached.
func (c *Cache) Rewards() ([]models.Reward, error) {
	r, ok, err := getJSON[[]models.Reward](c, KeyRewards)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.DefaultRewards(), nil
	}
	return r, nil
}

// SetRewards caches the reward list.
func (c *Cache) SetRewards(r []models.Reward) error {
	return c.setJSON(KeyRewards, r)
}

// WorkoutLog returns the cached per-day workout log.
func (c *Cache) WorkoutLog() ([]models.WorkoutLogEntry, error) {
	l, _, err := getJSON[[]models.WorkoutLogEntry](c, KeyWorkoutLog)
	return l, err
}

// SetWorkoutLog caches the workout log.
func (c *Cache) SetWorkoutLog(l []models.WorkoutLogEntry) error {
	return c.setJSON(KeyWorkoutLog, l)
}

// VaultImages returns the images stored in the vault.
func (c *Cache) VaultImages() ([]models.VaultImage, error) {
	v, _, err := getJSON[[]models.VaultImage](c, KeyVaultImages)
	return v, err
}

// SetVaultImages replaces the vault contents.
func (c *Cache) SetVaultImages(v []models.VaultImage) error {
	return c.setJSON(KeyVaultImages, v)
}

// VaultPIN returns the stored PIN hash, or "" if no PIN is set.
func (c *Cache) VaultPIN() (string, error) {
	p, _, err := getJSON[string](c, KeyVaultPIN)
	return p, err
}

// SetVaultPIN stores the PIN hash.
func (c *Cache) SetVaultPIN(hash string) error {
	return c.setJSON(KeyVaultPIN, hash)
}

// Macros returns today's cached macros, if any.
func (c *Cache) Macros() (models.Macros, error) {
	m, _, err := getJSON[models.Macros](c, KeyMacros)
	return m, err
}

// SetMacros caches macros.
func (c *Cache) SetMacros(m models.Macros) error {
	return c.setJSON(KeyMacros, m)
}

// LootBoxes returns the loot-box counters. They are kept under two keys.
func (c *Cache) LootBoxes() (models.LootBoxInventory, error) {
	count, err := c.intValue(KeyLootBoxCount)
	if err != nil {
		return models.LootBoxInventory{}, err
	}
	lifetime, err := c.intValue(KeyLootBoxLifetime)
	if err != nil {
		return models.LootBoxInventory{}, err
	}
	return models.LootBoxInventory{Count: count, LifetimeClaimed: lifetime}, nil
}

// SetLootBoxes stores both loot-box counters in one write, so the lifetime
// counter never advances without the boxes it granted.
func (c *Cache) SetLootBoxes(inv models.LootBoxInventory) error {
	err := c.backend.SetBatch([]Entry{
		{Key: []byte(c.Key(KeyLootBoxCount)), Value: []byte(strconv.Itoa(inv.Count))},
		{Key: []byte(c.Key(KeyLootBoxLifetime)), Value: []byte(strconv.Itoa(inv.LifetimeClaimed))},
	})
	if err != nil {
		return fmt.Errorf("set loot boxes: %w", err)
	}
	return nil
}

func (c *Cache) intValue(feature string) (int, error) {
	data, err := c.backend.Get([]byte(c.Key(feature)))
	if err != nil {
		if errors.Is(err, ErrMissing) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", feature, err)
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", feature, err)
	}
	return n, nil
}

// Delete removes the given features.
func (c *Cache) Delete(features ...string) error {
	for _, f := range features {
		if err := c.backend.Delete([]byte(c.Key(f))); err != nil {
			return fmt.Errorf("delete %s: %w", f, err)
		}
	}
	return nil
}

// Wipe removes every key belonging to this user.
func (c *Cache) Wipe() error {
	keys, err := c.backend.Keys()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	prefix := []byte(c.ns)
	for _, k := range keys {
		if bytes.HasPrefix(k, prefix) {
			if err := c.backend.Delete(k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
	}
	return nil
}
