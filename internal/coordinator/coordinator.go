// ABOUTME: Gamification state coordinator over the remote store and local cache.
// ABOUTME: Owns level, loot-box, reward and quest consistency for the signed-in user.
package coordinator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/levelup/internal/debounce"
	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/observe"
	"github.com/harperreed/levelup/internal/session"
	"github.com/harperreed/levelup/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Topics published on the observe store.
const (
	TopicProfile    = "profile"
	TopicWater      = "water"
	TopicStatus     = "status"
	TopicRewards    = "rewards"
	TopicLootBoxes  = "lootboxes"
	TopicWorkoutLog = "workout_log"
	TopicMacros     = "macros"
)

var allTopics = []string{
	TopicProfile, TopicWater, TopicStatus, TopicRewards,
	TopicLootBoxes, TopicWorkoutLog, TopicMacros,
}

// Default debounce delays for remote writes of free-text fields.
const (
	DefaultBioDelay    = 1500 * time.Millisecond
	DefaultMacrosDelay = 2 * time.Second
)

// Options configures a Coordinator. Repo, Cache and Sessions are required.
type Options struct {
	Repo     storage.Repository
	Cache    localcache.Backend
	Sessions *session.Manager
	Store    *observe.Store
	Logger   *log.Logger

	// Location decides where a calendar day starts. Nil means local time.
	Location *time.Location
	Now      func() time.Time
	Rand     *rand.Rand

	LootTable   game.Table
	BioDelay    time.Duration
	MacrosDelay time.Duration
	PINCost     int
}

// Coordinator serializes all gamification mutations for the signed-in user.
type Coordinator struct {
	mu       sync.Mutex
	repo     storage.Repository
	backend  localcache.Backend
	sessions *session.Manager
	store    *observe.Store
	log      *log.Logger
	loc      *time.Location
	now      func() time.Time
	rng      *rand.Rand
	table    game.Table
	pinCost  int

	bio    *debounce.Debouncer
	macros *debounce.Debouncer

	sessMu       sync.Mutex
	lastUser     string
	unsubSession func()
	closeOnce    sync.Once
}

// New builds a coordinator from opts.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		repo:     opts.Repo,
		backend:  opts.Cache,
		sessions: opts.Sessions,
		store:    opts.Store,
		log:      opts.Logger,
		loc:      opts.Location,
		now:      opts.Now,
		rng:      opts.Rand,
		table:    opts.LootTable,
		pinCost:  opts.PINCost,
	}
	if c.store == nil {
		c.store = observe.NewStore()
	}
	if c.log == nil {
		c.log = log.Default()
	}
	c.log = c.log.With("component", "coordinator")
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.table == nil {
		c.table = game.LootBoxTable
	}
	if c.pinCost == 0 {
		c.pinCost = bcrypt.DefaultCost
	}

	bioDelay := opts.BioDelay
	if bioDelay <= 0 {
		bioDelay = DefaultBioDelay
	}
	macrosDelay := opts.MacrosDelay
	if macrosDelay <= 0 {
		macrosDelay = DefaultMacrosDelay
	}
	c.bio = debounce.New(bioDelay)
	c.macros = debounce.New(macrosDelay)

	// Cached values belong to one user; drop them when the session changes.
	c.unsubSession = c.sessions.Subscribe(c.sessionChanged)

	return c
}

// sessionChanged resets every published topic when the signed-in user
// changes. Subscribers see nil for each cleared topic. Notifications from
// concurrent sign-ins can arrive out of order, so the manager's current
// session is read instead of the one passed in.
func (c *Coordinator) sessionChanged(*session.Session) {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()

	user := ""
	if s, ok := c.sessions.Current(); ok {
		user = s.UserID
	}
	if user == c.lastUser {
		return
	}
	c.lastUser = user
	for _, t := range allTopics {
		c.store.Invalidate(t)
	}
}

// Topics lists every topic the coordinator publishes.
func Topics() []string {
	return append([]string(nil), allTopics...)
}

// Store returns the observe store the coordinator publishes to.
func (c *Coordinator) Store() *observe.Store {
	return c.store
}

// Today returns the current calendar day at the configured boundary.
func (c *Coordinator) Today() models.Day {
	return models.DayOf(c.now(), c.loc)
}

func (c *Coordinator) nextDayStart(day models.Day) time.Time {
	t, err := day.Next().Start(c.loc)
	if err != nil {
		return c.now().Add(24 * time.Hour)
	}
	return t
}

// user returns the signed-in session and a cache scoped to it.
func (c *Coordinator) user() (session.Session, *localcache.Cache, error) {
	sess, ok := c.sessions.Current()
	if !ok {
		return session.Session{}, nil, ErrNotAuthenticated
	}
	return sess, localcache.New(c.backend, sess.UserID), nil
}

// ensureProfile reads the remote profile, creating it at signup defaults
// when it does not exist yet.
func (c *Coordinator) ensureProfile(ctx context.Context, sess session.Session) (*models.Profile, error) {
	p, err := c.repo.GetProfile(ctx, sess.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, persistErr("load profile", err)
	}

	p = models.NewProfile(sess.UserID, sess.DisplayName)
	p.UpdatedAt = c.now()
	if err := c.repo.UpsertProfile(ctx, p); err != nil {
		return nil, persistErr("create profile", err)
	}
	c.log.Info("created profile", "user", sess.UserID)
	return p, nil
}

// cacheProfile writes a snapshot through to the local cache and publishes it.
// Local write failures are logged; the remote store stays authoritative.
func (c *Coordinator) cacheProfile(cache *localcache.Cache, p *models.Profile) {
	if err := cache.SetProfile(p); err != nil {
		c.log.Warn("cache profile", "err", err)
	}
	c.store.Publish(TopicProfile, p.Clone())
}

// reconcile grants owed loot boxes and unlocks reached rewards for level.
// It returns how many boxes were granted.
func (c *Coordinator) reconcile(cache *localcache.Cache, level int) int {
	granted := 0

	inv, err := cache.LootBoxes()
	if err != nil {
		c.log.Warn("read loot boxes", "err", err)
	} else if next, ok := game.ReconcileLootBoxes(level, inv); ok {
		if err := cache.SetLootBoxes(next); err != nil {
			c.log.Warn("cache loot boxes", "err", err)
		} else {
			granted = next.Count - inv.Count
			c.store.Publish(TopicLootBoxes, next)
			c.log.Info("granted loot boxes", "count", granted, "level", level)
		}
	}

	rewards, err := cache.Rewards()
	if err != nil {
		c.log.Warn("read rewards", "err", err)
		return granted
	}
	if synced, changed := game.SyncRewards(rewards, level); changed {
		if err := cache.SetRewards(synced); err != nil {
			c.log.Warn("cache rewards", "err", err)
		} else {
			c.store.Publish(TopicRewards, synced)
		}
	}
	return granted
}

// Load publishes the cached snapshot, then fetches the authoritative
// profile, writes it through and re-runs reconciliation so any divergence
// between level and the local counters heals on startup.
func (c *Coordinator) Load(ctx context.Context) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return nil, err
	}

	c.publishCached(cache)

	v, err := c.store.Revalidate(ctx, TopicProfile, func(ctx context.Context) (any, error) {
		return c.ensureProfile(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	p := v.(*models.Profile)

	if err := cache.SetProfile(p); err != nil {
		c.log.Warn("cache profile", "err", err)
	}
	c.reconcile(cache, p.Level)
	return p.Clone(), nil
}

func (c *Coordinator) publishCached(cache *localcache.Cache) {
	if p, err := cache.Profile(); err == nil && p != nil {
		c.store.Publish(TopicProfile, p)
	}
	if inv, err := cache.LootBoxes(); err == nil {
		c.store.Publish(TopicLootBoxes, inv)
	}
	if r, err := cache.Rewards(); err == nil {
		c.store.Publish(TopicRewards, r)
	}
	if l, err := cache.WorkoutLog(); err == nil {
		c.store.Publish(TopicWorkoutLog, l)
	}
	if s, err := cache.Status(); err == nil {
		c.store.Publish(TopicStatus, s)
	}
	c.store.Publish(TopicWater, c.todayWater(cache))
}

// Profile returns the authoritative profile.
func (c *Coordinator) Profile(ctx context.Context) (*models.Profile, error) {
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
	c.cacheProfile(cache, p)
	return p, nil
}

// Wipe zeroes the remote gamification fields and resets local game state
// to defaults. Vault contents and macros are kept.
func (c *Coordinator) Wipe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, cache, err := c.user()
	if err != nil {
		return err
	}
	if _, err := c.ensureProfile(ctx, sess); err != nil {
		return err
	}
	if err := c.repo.ResetProfile(ctx, sess.UserID); err != nil {
		return persistErr("reset profile", err)
	}

	defaults := models.DefaultRewards()
	empty := models.LootBoxInventory{}
	if err := cache.SetRewards(defaults); err != nil {
		c.log.Warn("reset rewards", "err", err)
	}
	if err := cache.SetLootBoxes(empty); err != nil {
		c.log.Warn("reset loot boxes", "err", err)
	}
	if err := cache.Delete(localcache.KeyWorkoutLog, localcache.KeyWater, localcache.KeyStatus); err != nil {
		c.log.Warn("clear local state", "err", err)
	}

	c.store.Publish(TopicRewards, defaults)
	c.store.Publish(TopicLootBoxes, empty)
	c.store.Publish(TopicWorkoutLog, []models.WorkoutLogEntry(nil))
	c.store.Publish(TopicWater, models.WaterBucket{Date: c.Today()})
	c.store.Publish(TopicStatus, "")

	p, err := c.repo.GetProfile(ctx, sess.UserID)
	if err != nil {
		return persistErr("reload profile", err)
	}
	c.cacheProfile(cache, p)
	c.log.Info("wiped game data", "user", sess.UserID)
	return nil
}

// Sync pushes and pulls the local cache when its backend syncs.
func (c *Coordinator) Sync() error {
	return c.backend.Sync()
}

// Close flushes pending debounced writes and detaches from the session.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.bio.Flush()
		c.macros.Flush()
		if c.unsubSession != nil {
			c.unsubSession()
		}
	})
	return nil
}
