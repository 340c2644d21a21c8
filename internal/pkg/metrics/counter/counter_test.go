package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFlushLoop_FlushesOnTickAndShutdown(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	flush := func() error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		flushLoop(ctx, 5*time.Millisecond, flush)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush loop did not stop after cancellation")
	}

	mu.Lock()
	got := calls
	mu.Unlock()
	// at least one tick flush plus the final shutdown flush
	if got < 2 {
		t.Fatalf("expected periodic and shutdown flushes, got %d calls", got)
	}
}

func TestFlushLoop_KeepsRunningAfterFlushError(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	flush := func() error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("redis unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		flushLoop(ctx, 5*time.Millisecond, flush)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	got := calls
	mu.Unlock()
	if got < 3 {
		t.Fatalf("loop should survive flush errors, got %d calls", got)
	}
}
