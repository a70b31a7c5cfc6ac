// ABOUTME: Tests for the session manager.
// ABOUTME: Verifies sign-in state and the subscribe/unsubscribe lifecycle.
package session

import "testing"

func TestSignInSignOut(t *testing.T) {
	m := NewManager()

	if _, ok := m.Current(); ok {
		t.Fatal("expected no session initially")
	}

	m.SignIn(Session{UserID: "u1", DisplayName: "Ada"})
	s, ok := m.Current()
	if !ok || s.UserID != "u1" {
		t.Errorf("Current = %+v, %v", s, ok)
	}

	m.SignOut()
	if _, ok := m.Current(); ok {
		t.Error("expected no session after sign out")
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	m := NewManager()
	m.SignIn(Session{UserID: "u1"})

	var seen []string
	unsubscribe := m.Subscribe(func(s *Session) {
		if s == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, s.UserID)
	})

	m.SignIn(Session{UserID: "u2"})
	m.SignOut()
	unsubscribe()
	unsubscribe()
	m.SignIn(Session{UserID: "u3"})

	want := []string{"u1", "u2", "<nil>"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}
