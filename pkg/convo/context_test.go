package convo

import (
	"strings"
	"testing"
)

// TestCloneIsolation verifies clones do not share message storage.
func TestCloneIsolation(t *testing.T) {
	c := New()
	c.AppendSystem("prompt")
	c.AppendUser("question")

	clone := c.Clone()
	clone.AppendAssistant("answer")
	clone.Messages[0].Content = "mutated"

	if c.Len() != 2 {
		t.Errorf("original Len() = %d, want 2", c.Len())
	}
	if c.Messages[0].Content != "prompt" {
		t.Errorf("original system message = %q, want %q", c.Messages[0].Content, "prompt")
	}
}

// TestSizeCountsContentOnly verifies Size sums message contents.
func TestSizeCountsContentOnly(t *testing.T) {
	c := New()
	c.AppendUser("12345")
	c.AppendAssistant("123")

	if got := c.Size(); got != 8 {
		t.Errorf("Size() = %d, want 8", got)
	}
}

// TestInitialPromptAndTask verifies extraction of the first system and
// user messages.
func TestInitialPromptAndTask(t *testing.T) {
	c := New()
	if c.InitialPrompt() != "" || c.Task() != "" {
		t.Error("empty context must yield empty prompt and task")
	}

	c.AppendSystem("role prompt")
	c.AppendSystem("tool list")
	c.AppendUser("the task")
	c.AppendUser("a followup")

	if got := c.InitialPrompt(); got != "role prompt" {
		t.Errorf("InitialPrompt() = %q, want %q", got, "role prompt")
	}
	if got := c.Task(); got != "the task" {
		t.Errorf("Task() = %q, want %q", got, "the task")
	}
}

// TestTranscript verifies roles and contents appear in order.
func TestTranscript(t *testing.T) {
	c := New()
	c.AppendUser("first")
	c.AppendAssistant("second")

	tr := c.Transcript()
	if !strings.Contains(tr, "user: first") || !strings.Contains(tr, "assistant: second") {
		t.Errorf("Transcript() = %q, missing expected lines", tr)
	}
	if strings.Index(tr, "first") > strings.Index(tr, "second") {
		t.Error("Transcript() lost message order")
	}
}
