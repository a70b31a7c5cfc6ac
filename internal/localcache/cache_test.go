// ABOUTME: Tests for the local cache over an in-memory Badger backend.
// ABOUTME: Covers defaults, namespacing, loot-box counters and wipe.
package localcache

import (
	"bytes"
	"errors"
	"testing"

	"github.com/harperreed/levelup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, userID string) (*Cache, Backend) {
	t.Helper()
	b, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return New(b, userID), b
}

func TestKeyFormat(t *testing.T) {
	c, _ := newTestCache(t, "u1")
	assert.Equal(t, "u1:profile", c.Key(KeyProfile))
	assert.Equal(t, "u1:lootbox_lifetime", c.Key(KeyLootBoxLifetime))
}

func TestProfileRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, "u1")

	p, err := c.Profile()
	require.NoError(t, err)
	assert.Nil(t, p, "expected no cached profile")

	day := models.Day("2025-01-31")
	want := models.NewProfile("u1", "Ada")
	want.XP = 180
	want.Level = 2
	want.LastClaim = &day
	require.NoError(t, c.SetProfile(want))

	got, err := c.Profile()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 180, got.XP)
	assert.Equal(t, day, *got.LastClaim)
}

func TestRewardsDefaultWhenMissing(t *testing.T) {
	c, _ := newTestCache(t, "u1")

	rewards, err := c.Rewards()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRewards(), rewards)

	require.NoError(t, c.SetRewards([]models.Reward{}))
	rewards, err = c.Rewards()
	require.NoError(t, err)
	assert.Empty(t, rewards, "an explicitly empty list is not replaced by defaults")
}

func TestLootBoxCounters(t *testing.T) {
	c, b := newTestCache(t, "u1")

	inv, err := c.LootBoxes()
	require.NoError(t, err)
	assert.Equal(t, models.LootBoxInventory{}, inv)

	require.NoError(t, c.SetLootBoxes(models.LootBoxInventory{Count: 2, LifetimeClaimed: 5}))
	inv, err = c.LootBoxes()
	require.NoError(t, err)
	assert.Equal(t, models.LootBoxInventory{Count: 2, LifetimeClaimed: 5}, inv)

	raw, err := b.Get([]byte("u1:lootbox_count"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(raw))
}

// brokenBackend fails any write that touches failKey.
type brokenBackend struct {
	Backend
	failKey []byte
}

var errDiskFull = errors.New("disk full")

func (b *brokenBackend) Set(key, value []byte) error {
	if bytes.Equal(key, b.failKey) {
		return errDiskFull
	}
	return b.Backend.Set(key, value)
}

func (b *brokenBackend) SetBatch(entries []Entry) error {
	for _, e := range entries {
		if bytes.Equal(e.Key, b.failKey) {
			return errDiskFull
		}
	}
	return b.Backend.SetBatch(entries)
}

func TestLootBoxCountersWriteTogether(t *testing.T) {
	_, b := newTestCache(t, "u1")
	require.NoError(t, New(b, "u1").SetLootBoxes(models.LootBoxInventory{Count: 1, LifetimeClaimed: 1}))

	for _, key := range []string{"u1:lootbox_count", "u1:lootbox_lifetime"} {
		c := New(&brokenBackend{Backend: b, failKey: []byte(key)}, "u1")
		err := c.SetLootBoxes(models.LootBoxInventory{Count: 2, LifetimeClaimed: 2})
		require.ErrorIs(t, err, errDiskFull, key)

		inv, err := c.LootBoxes()
		require.NoError(t, err)
		assert.Equal(t, models.LootBoxInventory{Count: 1, LifetimeClaimed: 1}, inv, key)
	}
}

func TestSetBatch(t *testing.T) {
	_, b := newTestCache(t, "u1")

	require.NoError(t, b.SetBatch([]Entry{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}))
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := b.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	b, err := OpenMemory()
	require.NoError(t, err)
	defer b.Close()

	alice := New(b, "alice")
	bob := New(b, "bob")

	require.NoError(t, alice.SetStatus("lifting"))
	require.NoError(t, bob.SetStatus("resting"))
	require.NoError(t, alice.Wipe())

	s, err := alice.Status()
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = bob.Status()
	require.NoError(t, err)
	assert.Equal(t, "resting", s)
}

func TestDeleteFeatures(t *testing.T) {
	c, _ := newTestCache(t, "u1")
	require.NoError(t, c.SetWater(models.WaterBucket{Date: "2025-01-31", ML: 500}))
	require.NoError(t, c.SetWorkoutLog([]models.WorkoutLogEntry{{Date: "2025-01-31", Minutes: 20}}))

	require.NoError(t, c.Delete(KeyWater, KeyWorkoutLog))

	w, err := c.Water()
	require.NoError(t, err)
	assert.Equal(t, models.WaterBucket{}, w)

	l, err := c.WorkoutLog()
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestBadgerBackendMissingKey(t *testing.T) {
	b, err := OpenMemory()
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Get([]byte("nope"))
	assert.ErrorIs(t, err, ErrMissing)
	assert.NoError(t, b.Sync())
}

func TestOpenBadgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set([]byte("k"), []byte("v")))
	require.NoError(t, b.Close())

	b, err = OpenBadger(dir)
	require.NoError(t, err)
	defer b.Close()
	v, err := b.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}
