// ABOUTME: Tests for the debouncer.
// ABOUTME: Covers coalescing, flush-on-close and drop semantics.
package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTriggerCoalesces(t *testing.T) {
	d := New(30 * time.Millisecond)
	var last int32
	var runs int32

	for i := int32(1); i <= 5; i++ {
		v := i
		d.Trigger(func() {
			atomic.StoreInt32(&last, v)
			atomic.AddInt32(&runs, 1)
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("last = %d, want 5", got)
	}
	if d.Pending() {
		t.Error("expected nothing pending after run")
	}
}

func TestFlushRunsPendingNow(t *testing.T) {
	d := New(time.Hour)
	ran := false
	d.Trigger(func() { ran = true })

	if !d.Pending() {
		t.Fatal("expected pending task")
	}
	if !d.Flush() {
		t.Fatal("Flush reported nothing to run")
	}
	if !ran {
		t.Error("expected task to run on Flush")
	}
	if d.Flush() {
		t.Error("second Flush should have nothing to run")
	}
}

func TestStopDropsPending(t *testing.T) {
	d := New(10 * time.Millisecond)
	var runs int32
	d.Trigger(func() { atomic.AddInt32(&runs, 1) })

	if !d.Stop() {
		t.Fatal("Stop reported nothing pending")
	}
	time.Sleep(40 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("runs = %d, want 0", got)
	}
}
