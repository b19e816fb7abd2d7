package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestEmitAfterCloseIsNoop verifies a closed emitter drops events silently.
func TestEmitAfterCloseIsNoop(t *testing.T) {
	e := NewChanEmitter(1)
	e.Close()

	// Не должно паниковать отправкой в закрытый канал
	e.Emit(context.Background(), Event{Type: EventMessage})
}

// TestConcurrentEmitAndClose verifies Close during in-flight Emit calls
// never panics: Close waits out senders before closing the channel.
func TestConcurrentEmitAndClose(t *testing.T) {
	e := NewChanEmitter(4)
	sub := e.Subscribe()

	// Потребитель дренирует канал до закрытия
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range sub.Events() {
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.Emit(context.Background(), Event{Type: EventToolCall})
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	e.Close()
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel was never closed")
	}
}

// TestEmitUnblocksOnContextCancel verifies a sender stuck on a full
// buffer is released by its context, so Close can proceed.
func TestEmitUnblocksOnContextCancel(t *testing.T) {
	e := NewChanEmitter(0) // небуферизованный, без читателя

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		e.Emit(ctx, Event{Type: EventMessage})
	}()

	cancel()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit did not return after context cancel")
	}

	e.Close()
}
