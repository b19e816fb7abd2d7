package notes

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestAppendAndReadAll verifies notes come back in insertion order.
func TestAppendAndReadAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if err := s.Append(ctx, content); err != nil {
			t.Fatalf("Append(%s) failed: %v", content, err)
		}
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d notes, want 3", len(all))
	}
	want := []string{"first", "second", "third"}
	for i, n := range all {
		if n.Content != want[i] {
			t.Errorf("note[%d] = %q, want %q", i, n.Content, want[i])
		}
		if n.ID == 0 {
			t.Errorf("note[%d] has zero ID", i)
		}
	}
}

// TestAppendEmptyRejected verifies empty notes are refused.
func TestAppendEmptyRejected(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append(context.Background(), ""); err == nil {
		t.Error("Append(\"\") succeeded, want error")
	}
}

// TestClear verifies Clear removes everything.
func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "doomed"); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("got %d notes after Clear, want 0", len(all))
	}
}

// TestOpenEmptyPathRejected verifies path validation.
func TestOpenEmptyPathRejected(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") succeeded, want error")
	}
}
