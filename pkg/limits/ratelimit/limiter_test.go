package ratelimit

import (
	"testing"
	"time"
)

func TestSlidingWindow_AddAndSum(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, time.Second)

	if got := sw.AddAndSum(1); got != 1 {
		t.Errorf("first AddAndSum = %d, want 1", got)
	}
	if got := sw.AddAndSum(1); got != 2 {
		t.Errorf("second AddAndSum = %d, want 2", got)
	}

	sw.Add(3)
	if got := sw.Sum(); got != 5 {
		t.Errorf("Sum() = %d, want 5", got)
	}
}

func TestSlidingWindow_PrunesOldBuckets(t *testing.T) {
	sw := NewSlidingWindow(50*time.Millisecond, 10*time.Millisecond)

	sw.Add(10)
	if got := sw.Sum(); got != 10 {
		t.Fatalf("Sum() = %d, want 10", got)
	}

	time.Sleep(80 * time.Millisecond)

	if got := sw.Sum(); got != 0 {
		t.Errorf("Sum() after window elapsed = %d, want 0", got)
	}
	if !sw.Idle() {
		t.Error("window should be idle once all buckets expired")
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, time.Second)
	sw.Add(7)
	sw.Reset()

	if got := sw.Sum(); got != 0 {
		t.Errorf("Sum() after Reset = %d, want 0", got)
	}
}

func TestLimiter_EnforcesLimit(t *testing.T) {
	l := NewLimiter(Config{
		Enabled:           true,
		RequestsPerWindow: 3,
		Window:            time.Minute,
	})

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request past the limit should be rejected")
	}

	// A different client has its own window.
	if !l.Allow("10.0.0.2") {
		t.Error("second client should not share the first client's window")
	}
}

func TestLimiter_CountsRejectedRequests(t *testing.T) {
	l := NewLimiter(Config{
		Enabled:           true,
		RequestsPerWindow: 1,
		Window:            time.Minute,
	})

	l.Allow("10.0.0.1")

	// Every rejected attempt still lands in the window, so the client
	// cannot drain it by hammering.
	for i := 0; i < 5; i++ {
		if l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be rejected", i+1)
		}
	}
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(Config{Enabled: false, RequestsPerWindow: 1})

	for i := 0; i < 10; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("disabled limiter must never reject")
		}
	}
	if l.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0 when disabled", l.ClientCount())
	}
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	l := NewLimiter(Config{
		Enabled:           true,
		RequestsPerWindow: 100,
		Window:            30 * time.Millisecond,
	})

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	if l.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d, want 2", l.ClientCount())
	}

	time.Sleep(60 * time.Millisecond)
	l.evictIdle()

	if l.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0 after eviction", l.ClientCount())
	}
}

func TestLimiter_DefaultsApplied(t *testing.T) {
	l := NewLimiter(Config{Enabled: true})

	if l.cfg.RequestsPerWindow != 120 {
		t.Errorf("RequestsPerWindow = %d, want 120", l.cfg.RequestsPerWindow)
	}
	if l.cfg.Window != time.Minute {
		t.Errorf("Window = %v, want 1m", l.cfg.Window)
	}
}
