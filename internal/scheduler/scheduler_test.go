package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSchedule_FiresRepeatedly(t *testing.T) {
	s := New(zap.NewNop())
	defer s.StopAll(context.Background())

	var count atomic.Int32
	s.Schedule("u1_a1", 10*time.Millisecond, func(ctx context.Context) { count.Add(1) })

	waitFor(t, time.Second, func() bool { return count.Load() >= 3 })
}

func TestSchedule_ReplacesExistingTimer(t *testing.T) {
	s := New(zap.NewNop())
	defer s.StopAll(context.Background())

	var first, second atomic.Int32
	s.Schedule("u1_a1", 10*time.Millisecond, func(ctx context.Context) { first.Add(1) })
	s.Schedule("u1_a1", 10*time.Millisecond, func(ctx context.Context) { second.Add(1) })

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	waitFor(t, time.Second, func() bool { return second.Load() >= 2 })
	stale := first.Load()
	time.Sleep(50 * time.Millisecond)
	if first.Load() != stale {
		t.Error("replaced timer kept firing")
	}
}

func TestCancel_StopsFutureFirings(t *testing.T) {
	s := New(zap.NewNop())

	var count atomic.Int32
	s.Schedule("u1_a1", 10*time.Millisecond, func(ctx context.Context) { count.Add(1) })
	waitFor(t, time.Second, func() bool { return count.Load() >= 1 })

	if !s.Cancel("u1_a1") {
		t.Fatal("Cancel returned false for a registered job")
	}
	if s.Has("u1_a1") {
		t.Error("Has after Cancel = true")
	}
	if s.Cancel("u1_a1") {
		t.Error("second Cancel returned true")
	}

	if err := s.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	if count.Load() != after {
		t.Error("task fired after Cancel")
	}
}

func TestCancel_DoesNotInterruptRunningTask(t *testing.T) {
	s := New(zap.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	var once atomic.Bool
	s.Schedule("u1_a1", 5*time.Millisecond, func(ctx context.Context) {
		if !once.CompareAndSwap(false, true) {
			return
		}
		close(started)
		<-release
		finished.Store(true)
	})

	<-started
	s.Cancel("u1_a1")
	close(release)

	if err := s.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if !finished.Load() {
		t.Error("in-flight task did not run to completion")
	}
}

func TestSchedule_RecoversPanic(t *testing.T) {
	s := New(zap.NewNop())
	defer s.StopAll(context.Background())

	var count atomic.Int32
	s.Schedule("boom", 10*time.Millisecond, func(ctx context.Context) {
		count.Add(1)
		panic("boom")
	})

	waitFor(t, time.Second, func() bool { return count.Load() >= 2 })
	if !s.Has("boom") {
		t.Error("timer unregistered after panic")
	}
}

func TestStopAll_HonoursDeadline(t *testing.T) {
	s := New(zap.NewNop())

	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{}, 1)
	s.Schedule("slow", 5*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.StopAll(ctx); err == nil {
		t.Error("StopAll returned nil while a task was blocked")
	}
}
