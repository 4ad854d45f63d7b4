package lifecycle_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/gallery/pkg/lifecycle"
)

func TestStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("ready before WaitForStartup")
	}

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup: %v", err)
	}
	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("not ready after successful startup")
	}
}

func TestStartupFailure(t *testing.T) {
	lc := lifecycle.New()
	errPing := errors.New("database ping failed")

	lc.OnStartup(func() error { return nil })
	lc.OnStartup(func() error { return errPing })

	err := lc.WaitForStartup()
	if !errors.Is(err, errPing) {
		t.Fatalf("WaitForStartup = %v, want wrapped %v", err, errPing)
	}
	if lc.Ready() {
		t.Error("ready after failed startup")
	}
}

func TestShutdown(t *testing.T) {
	t.Run("runs hooks and cancels context", func(t *testing.T) {
		lc := lifecycle.New()

		var closed atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			closed.Store(true)
		})

		if err := lc.WaitForStartup(); err != nil {
			t.Fatalf("WaitForStartup: %v", err)
		}
		if err := lc.Shutdown(5 * time.Second); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}

		if !closed.Load() {
			t.Error("shutdown hook did not execute")
		}
		if lc.Ready() {
			t.Error("still ready after shutdown")
		}
		select {
		case <-lc.Context().Done():
		default:
			t.Error("context not cancelled after shutdown")
		}
	})

	t.Run("times out on slow hooks", func(t *testing.T) {
		lc := lifecycle.New()
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			time.Sleep(500 * time.Millisecond)
		})

		if err := lc.Shutdown(50 * time.Millisecond); err == nil {
			t.Error("expected timeout error, got nil")
		}
	})
}
