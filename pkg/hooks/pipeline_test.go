package hooks

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/deepshard/hyphae/pkg/convo"
)

type hookState struct {
	connects    int
	disconnects int
}

// TestLifecycleHooks verifies connect/disconnect delegation.
func TestLifecycleHooks(t *testing.T) {
	state := &hookState{}
	p := NewPipeline(Set[*hookState]{
		OnConnect: func(ctx context.Context, s *hookState) error {
			s.connects++
			return nil
		},
		OnDisconnect: func(ctx context.Context, s *hookState) error {
			s.disconnects++
			return nil
		},
	}, 0)

	if err := p.Connect(context.Background(), state); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if err := p.Disconnect(context.Background(), state); err != nil {
		t.Fatalf("Disconnect() failed: %v", err)
	}
	if state.connects != 1 || state.disconnects != 1 {
		t.Errorf("connects=%d disconnects=%d, want 1/1", state.connects, state.disconnects)
	}
}

// TestNilHooksAreSkipped verifies an empty Set is a no-op pipeline.
func TestNilHooksAreSkipped(t *testing.T) {
	p := NewPipeline(Set[*hookState]{}, 100)
	state := &hookState{}

	if err := p.Connect(context.Background(), state); err != nil {
		t.Errorf("Connect() with nil hook failed: %v", err)
	}

	c := convo.New()
	c.AppendUser("hello")
	if got := p.BuildContext(context.Background(), state, c); got != c {
		t.Error("BuildContext() with nil hook should return the original context")
	}
	if _, did := p.MaybeCompress(context.Background(), state, c); did {
		t.Error("MaybeCompress() with nil hook reported compression")
	}
}

// TestBuildContextHookErrorKeepsOriginal verifies a failing hook does
// not break the turn.
func TestBuildContextHookErrorKeepsOriginal(t *testing.T) {
	p := NewPipeline(Set[*hookState]{
		OnContextBuild: func(ctx context.Context, s *hookState, c *convo.Context) (*convo.Context, error) {
			return nil, fmt.Errorf("hook broke")
		},
	}, 0)

	c := convo.New()
	c.AppendUser("payload")
	got := p.BuildContext(context.Background(), &hookState{}, c)
	if got != c {
		t.Error("BuildContext() should fall back to the original context on hook error")
	}
}

// TestBuildContextHookGetsClone verifies hook mutations do not leak into
// the caller's context when the hook fails.
func TestBuildContextHookGetsClone(t *testing.T) {
	p := NewPipeline(Set[*hookState]{
		OnContextBuild: func(ctx context.Context, s *hookState, c *convo.Context) (*convo.Context, error) {
			c.AppendSystem("injected")
			return nil, fmt.Errorf("fail after mutation")
		},
	}, 0)

	c := convo.New()
	c.AppendUser("original")
	p.BuildContext(context.Background(), &hookState{}, c)
	if c.Len() != 1 {
		t.Errorf("original context has %d messages, want 1", c.Len())
	}
}

// TestMaybeCompressThreshold verifies compression fires only above the limit.
func TestMaybeCompressThreshold(t *testing.T) {
	compressed := convo.New()
	compressed.AppendUser("summary")

	calls := 0
	p := NewPipeline(Set[*hookState]{
		OnCompress: func(ctx context.Context, s *hookState, c *convo.Context) (*convo.Context, error) {
			calls++
			return compressed, nil
		},
	}, 50)

	small := convo.New()
	small.AppendUser("short")
	if _, did := p.MaybeCompress(context.Background(), &hookState{}, small); did {
		t.Error("MaybeCompress() fired below threshold")
	}

	big := convo.New()
	big.AppendUser(strings.Repeat("x", 60))
	got, did := p.MaybeCompress(context.Background(), &hookState{}, big)
	if !did {
		t.Fatal("MaybeCompress() did not fire above threshold")
	}
	if got != compressed {
		t.Error("MaybeCompress() did not return the hook's context")
	}
	if calls != 1 {
		t.Errorf("compress hook called %d times, want 1", calls)
	}
}

// TestMaybeCompressFallback verifies a failing compressor falls back to
// the uncompressed history plus a notice for the model.
func TestMaybeCompressFallback(t *testing.T) {
	p := NewPipeline(Set[*hookState]{
		OnCompress: func(ctx context.Context, s *hookState, c *convo.Context) (*convo.Context, error) {
			return nil, fmt.Errorf("summarizer down")
		},
	}, 10)

	c := convo.New()
	c.AppendUser(strings.Repeat("y", 20))
	got, did := p.MaybeCompress(context.Background(), &hookState{}, c)
	if did {
		t.Error("MaybeCompress() reported success despite hook error")
	}
	last := got.Messages[got.Len()-1]
	if !strings.Contains(last.Content, "compression failed") {
		t.Errorf("fallback context missing failure notice, last message = %q", last.Content)
	}
	// Исходная история сохранена
	if got.Messages[0].Content != c.Messages[0].Content {
		t.Error("fallback context lost the original history")
	}
}
