// ABOUTME: Key/value backends for the device-local cache.
// ABOUTME: Charm KV syncs to Charm Cloud; plain Badger stays on this device.
package localcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

// ErrMissing is returned by a Backend when a key has no value.
var ErrMissing = errors.New("key not found")

// Backend is the byte-level store behind a Cache.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	// SetBatch writes every entry in one transaction: all or none.
	SetBatch(entries []Entry) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Entry is one key/value pair of a batch write.
type Entry struct {
	Key   []byte
	Value []byte
}

const charmHost = "charm.2389.dev"

// CharmBackend stores values in Charm KV and syncs after each write.
type CharmBackend struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
}

// OpenCharm opens the named Charm KV database. An empty host uses the
// default Charm server for this tool.
func OpenCharm(name, host string) (*CharmBackend, error) {
	if host == "" {
		host = charmHost
	}
	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, err
	}

	db, err := kv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	b := &CharmBackend{kv: db, autoSync: true}

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return b, nil
}

// IsReadOnly returns true if another process holds the database lock.
func (b *CharmBackend) IsReadOnly() bool {
	return b.kv.IsReadOnly()
}

// SetAutoSync enables or disables automatic sync after writes.
func (b *CharmBackend) SetAutoSync(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoSync = enabled
}

func (b *CharmBackend) Get(key []byte) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, err := b.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMissing
	}
	return v, err
}

func (b *CharmBackend) Set(key, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}
	if err := b.kv.Set(key, value); err != nil {
		return err
	}
	b.syncIfEnabled()
	return nil
}

func (b *CharmBackend) SetBatch(entries []Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}
	txn, err := b.kv.NewTransaction(true)
	if err != nil {
		return err
	}
	defer txn.Discard()
	for _, e := range entries {
		if err := txn.Set(e.Key, e.Value); err != nil {
			return err
		}
	}
	// A nil callback commits synchronously.
	if err := b.kv.Commit(txn, nil); err != nil {
		return err
	}
	b.syncIfEnabled()
	return nil
}

func (b *CharmBackend) Delete(key []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}
	if err := b.kv.Delete(key); err != nil {
		return err
	}
	b.syncIfEnabled()
	return nil
}

func (b *CharmBackend) Keys() ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.kv.Keys()
}

// Sync synchronizes local state with Charm Cloud.
func (b *CharmBackend) Sync() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.kv.IsReadOnly() {
		return nil
	}
	return b.kv.Sync()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (b *CharmBackend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kv.Reset()
}

func (b *CharmBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kv != nil {
		return b.kv.Close()
	}
	return nil
}

// ID returns the Charm account ID this device is linked to.
func (b *CharmBackend) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Host returns the Charm server in use.
func (b *CharmBackend) Host() string {
	return os.Getenv("CHARM_HOST")
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (b *CharmBackend) syncIfEnabled() {
	if b.autoSync && !b.kv.IsReadOnly() {
		_ = b.kv.Sync()
	}
}

// BadgerBackend stores values in a plain Badger database with no cloud sync.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens or creates a Badger database in dir.
func OpenBadger(dir string) (*BadgerBackend, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(filepath.Clean(dir)).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// OpenMemory opens an in-memory Badger database.
func OpenMemory() (*BadgerBackend, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMissing
	}
	return out, err
}

func (b *BadgerBackend) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *BadgerBackend) SetBatch(entries []Entry) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := txn.Set(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerBackend) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *BadgerBackend) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Sync is a no-op; Badger data never leaves the device.
func (b *BadgerBackend) Sync() error {
	return nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
