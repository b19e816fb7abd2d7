package tools

import (
	"testing"
)

// TestVisibleNilPredicate verifies tools without a predicate are always shown.
func TestVisibleNilPredicate(t *testing.T) {
	reg := NewRegistry[*testState]()
	if err := reg.Register(descriptor("always")); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	visible := reg.Visible(&testState{open: false})
	if len(visible) != 1 || visible[0].Name != "always" {
		t.Errorf("Visible() = %v, want [always]", names(visible))
	}
}

// TestVisibleRecomputedPerCall verifies visibility tracks live state with no caching.
func TestVisibleRecomputedPerCall(t *testing.T) {
	reg := NewRegistry[*testState]()
	desc := descriptor("gated")
	desc.Predicate = func(s *testState) bool { return s.open }
	if err := reg.Register(desc); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	state := &testState{open: false}
	if got := reg.Visible(state); len(got) != 0 {
		t.Errorf("Visible() with closed state = %v, want empty", names(got))
	}

	state.open = true
	if got := reg.Visible(state); len(got) != 1 {
		t.Errorf("Visible() with open state = %v, want [gated]", names(got))
	}

	state.open = false
	if got := reg.Visible(state); len(got) != 0 {
		t.Errorf("Visible() after closing again = %v, want empty", names(got))
	}
}

// TestVisiblePanicFailsClosed verifies a panicking predicate hides its tool
// without affecting the rest of the set.
func TestVisiblePanicFailsClosed(t *testing.T) {
	reg := NewRegistry[*testState]()

	bomb := descriptor("bomb")
	bomb.Predicate = func(s *testState) bool { panic("predicate exploded") }
	if err := reg.Register(bomb); err != nil {
		t.Fatalf("Register(bomb) failed: %v", err)
	}
	if err := reg.Register(descriptor("steady")); err != nil {
		t.Fatalf("Register(steady) failed: %v", err)
	}

	visible := reg.Visible(&testState{})
	if len(visible) != 1 || visible[0].Name != "steady" {
		t.Errorf("Visible() = %v, want [steady]", names(visible))
	}
}

// TestVisibleOrder verifies visible tools keep registration order.
func TestVisibleOrder(t *testing.T) {
	reg := NewRegistry[*testState]()
	for _, n := range []string{"third", "first", "second"} {
		if err := reg.Register(descriptor(n)); err != nil {
			t.Fatalf("Register(%s) failed: %v", n, err)
		}
	}

	visible := reg.Visible(&testState{})
	want := []string{"third", "first", "second"}
	for i, d := range visible {
		if d.Name != want[i] {
			t.Errorf("Visible()[%d] = %q, want %q", i, d.Name, want[i])
		}
	}
}

func names[S any](descs []*Descriptor[S]) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Name)
	}
	return out
}
