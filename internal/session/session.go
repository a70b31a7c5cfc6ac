// ABOUTME: Explicit session context for the signed-in user.
// ABOUTME: Subscribers are notified on sign-in and sign-out until they unsubscribe.
package session

import (
	"errors"
	"sync"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session identifies the signed-in user.
type Session struct {
	UserID      string
	DisplayName string
}

// Manager holds the current session and notifies subscribers of changes.
type Manager struct {
	mu      sync.RWMutex
	current *Session
	subs    map[int]func(*Session)
	nextID  int
}

// NewManager returns a signed-out manager.
func NewManager() *Manager {
	return &Manager{subs: make(map[int]func(*Session))}
}

// SignIn replaces the current session.
func (m *Manager) SignIn(s Session) {
	m.mu.Lock()
	m.current = &s
	subs := m.snapshot()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(&s)
	}
}

// SignOut clears the current session.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	subs := m.snapshot()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Subscribe calls fn with the current session now and on every change.
// fn receives nil when signed out. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(*Session)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	var cur *Session
	if m.current != nil {
		s := *m.current
		cur = &s
	}
	m.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) snapshot() []func(*Session) {
	out := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}
