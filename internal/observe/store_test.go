// ABOUTME: Tests for the observable store.
// ABOUTME: Covers publish/subscribe, typed reads and shared revalidation.
package observe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	s := NewStore()

	var got []any
	unsubscribe := s.Subscribe("water", func(v any) { got = append(got, v) })

	s.Publish("water", 250)
	s.Publish("water", 500)
	s.Publish("status", "ignored")
	unsubscribe()
	s.Publish("water", 750)

	assert.Equal(t, []any{250, 500}, got)

	v, ok := Value[int](s, "water")
	require.True(t, ok)
	assert.Equal(t, 750, v)
}

func TestSubscribeReceivesCurrentValue(t *testing.T) {
	s := NewStore()
	s.Publish("status", "lifting")

	var got string
	unsubscribe := s.Subscribe("status", func(v any) { got = v.(string) })
	defer unsubscribe()

	assert.Equal(t, "lifting", got)
}

func TestValueTypeMismatch(t *testing.T) {
	s := NewStore()
	s.Publish("k", "text")

	_, ok := Value[int](s, "k")
	assert.False(t, ok)

	s.Invalidate("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestInvalidateNotifiesSubscribers(t *testing.T) {
	s := NewStore()
	s.Publish("profile", "ada")

	var got []any
	unsubscribe := s.Subscribe("profile", func(v any) { got = append(got, v) })
	defer unsubscribe()

	s.Invalidate("profile")
	// Nothing left to clear, so no second reset.
	s.Invalidate("profile")

	assert.Equal(t, []any{"ada", nil}, got)
	_, ok := s.Get("profile")
	assert.False(t, ok)
}

func TestRevalidatePublishes(t *testing.T) {
	s := NewStore()
	var seen any
	defer s.Subscribe("profile", func(v any) { seen = v })()

	v, err := s.Revalidate(context.Background(), "profile", func(context.Context) (any, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, "fresh", seen)
}

func TestRevalidateErrorKeepsLastValue(t *testing.T) {
	s := NewStore()
	s.Publish("profile", "cached")

	_, err := s.Revalidate(context.Background(), "profile", func(context.Context) (any, error) {
		return nil, errors.New("offline")
	})
	require.Error(t, err)

	v, _ := s.Get("profile")
	assert.Equal(t, "cached", v)
}

func TestRevalidateSharesInflightFetch(t *testing.T) {
	s := NewStore()
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})

	fetch := func(context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Revalidate(context.Background(), "k", fetch)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Revalidate(context.Background(), "k", fetch)
	}()

	// Give the second caller time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
