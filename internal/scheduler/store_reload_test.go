package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(context.Context) error {
	l.calls.Add(1)
	return l.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestStoreReloader_ManualTrigger(t *testing.T) {
	loader := &countingLoader{}
	sr := NewStoreReloader(loader, logger.Nop(), 0, make(chan struct{}, 1))
	sr.Start(context.Background())
	defer sr.Stop()

	if !sr.Trigger() {
		t.Fatal("Trigger() = false on an idle reloader")
	}
	waitFor(t, func() bool { return loader.calls.Load() == 1 })
}

func TestStoreReloader_TriggerDoesNotBlockWhenQueued(t *testing.T) {
	loader := &countingLoader{}
	// not started: the first send fills the buffer, the second must not block
	sr := NewStoreReloader(loader, logger.Nop(), 0, make(chan struct{}, 1))

	if !sr.Trigger() {
		t.Fatal("first Trigger() should be queued")
	}
	if sr.Trigger() {
		t.Error("second Trigger() should report a reload already queued")
	}
}

func TestStoreReloader_Interval(t *testing.T) {
	loader := &countingLoader{err: errors.New("store down")}
	sr := NewStoreReloader(loader, logger.Nop(), 10*time.Millisecond, make(chan struct{}, 1))
	sr.Start(context.Background())

	// failures are logged and the loop keeps going
	waitFor(t, func() bool { return loader.calls.Load() >= 3 })
	sr.Stop()

	n := loader.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := loader.calls.Load(); got != n {
		t.Errorf("reloads continued after Stop: %d -> %d", n, got)
	}
}

func TestStoreReloader_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sr := NewStoreReloader(&countingLoader{}, logger.Nop(), time.Hour, make(chan struct{}, 1))
	sr.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sr.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked after context cancel")
	}
}
