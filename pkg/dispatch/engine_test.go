package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/deepshard/hyphae/pkg/tools"
)

// appState — минимальное состояние для тестов движка.
type appState struct {
	unlocked bool
	counter  int
}

func newTestEngine(t *testing.T, state *appState, descs ...tools.Descriptor[*appState]) *Engine[*appState] {
	t.Helper()
	reg := tools.NewRegistry[*appState]()
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register(%s) failed: %v", d.Name, err)
		}
	}
	engine, err := NewEngine(reg, state, nil)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}

func echoTool() tools.Descriptor[*appState] {
	return tools.Descriptor[*appState]{
		Name:        "echo",
		Description: "echoes the query back",
		Args: []tools.ArgSpec{
			{Name: "query", Description: "text to echo", Type: tools.TypeString},
			{Name: "repeat", Description: "times to repeat", Type: tools.TypeInt, Default: 1},
		},
		Handler: func(ctx context.Context, s *appState, args tools.Args) (tools.Result, error) {
			return tools.Result{
				Text: strings.Repeat(args.String("query"), args.Int("repeat")),
			}, nil
		},
	}
}

// TestInvokeUnknownTool verifies lookup failure kind.
func TestInvokeUnknownTool(t *testing.T) {
	engine := newTestEngine(t, &appState{}, echoTool())

	outcome := engine.Invoke(context.Background(), Request{ToolName: "missing"})
	if !outcome.Failed() || outcome.Failure.Kind != KindUnknownTool {
		t.Errorf("Invoke(missing) = %+v, want KindUnknownTool", outcome)
	}
}

// TestInvokeNotAvailable verifies dispatch re-checks visibility against
// the live state, rejecting calls to registered-but-hidden tools.
func TestInvokeNotAvailable(t *testing.T) {
	gated := echoTool()
	gated.Name = "gated_echo"
	gated.Predicate = func(s *appState) bool { return s.unlocked }

	state := &appState{unlocked: false}
	engine := newTestEngine(t, state, gated)

	outcome := engine.Invoke(context.Background(), Request{
		ToolName:  "gated_echo",
		Arguments: map[string]any{"query": "hi"},
	})
	if !outcome.Failed() || outcome.Failure.Kind != KindToolNotAvailable {
		t.Fatalf("Invoke() on hidden tool = %+v, want KindToolNotAvailable", outcome)
	}

	// Состояние поменялось — тот же вызов проходит
	state.unlocked = true
	outcome = engine.Invoke(context.Background(), Request{
		ToolName:  "gated_echo",
		Arguments: map[string]any{"query": "hi"},
	})
	if outcome.Failed() {
		t.Errorf("Invoke() on visible tool failed: %+v", outcome.Failure)
	}
}

// TestInvokeArgumentValidation covers the argument failure taxonomy.
func TestInvokeArgumentValidation(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantKind FailureKind
	}{
		{
			name:     "unknown argument name",
			args:     map[string]any{"query": "x", "bogus": 1},
			wantKind: KindUnknownArgument,
		},
		{
			name:     "missing required argument",
			args:     map[string]any{"repeat": 2},
			wantKind: KindArgumentType,
		},
		{
			name:     "wrong argument type",
			args:     map[string]any{"query": 42},
			wantKind: KindArgumentType,
		},
		{
			name:     "fractional value for int argument",
			args:     map[string]any{"query": "x", "repeat": 1.5},
			wantKind: KindArgumentType,
		},
	}

	engine := newTestEngine(t, &appState{}, echoTool())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := engine.Invoke(context.Background(), Request{ToolName: "echo", Arguments: tt.args})
			if !outcome.Failed() {
				t.Fatalf("Invoke() succeeded, want %v", tt.wantKind)
			}
			if outcome.Failure.Kind != tt.wantKind {
				t.Errorf("Failure.Kind = %v, want %v", outcome.Failure.Kind, tt.wantKind)
			}
		})
	}
}

// TestInvokeCoercionAndDefaults verifies JSON-style values are coerced
// and omitted optional arguments pick up defaults.
func TestInvokeCoercionAndDefaults(t *testing.T) {
	engine := newTestEngine(t, &appState{}, echoTool())

	// repeat приходит как float64 (так его отдаёт encoding/json)
	outcome := engine.Invoke(context.Background(), Request{
		ToolName:  "echo",
		Arguments: map[string]any{"query": "ab", "repeat": float64(3)},
	})
	if outcome.Failed() {
		t.Fatalf("Invoke() failed: %+v", outcome.Failure)
	}
	if outcome.Success.Text != "ababab" {
		t.Errorf("Text = %q, want %q", outcome.Success.Text, "ababab")
	}

	// repeat опущен — подставляется дефолт 1
	outcome = engine.Invoke(context.Background(), Request{
		ToolName:  "echo",
		Arguments: map[string]any{"query": "solo"},
	})
	if outcome.Failed() {
		t.Fatalf("Invoke() with default failed: %+v", outcome.Failure)
	}
	if outcome.Success.Text != "solo" {
		t.Errorf("Text = %q, want %q", outcome.Success.Text, "solo")
	}
}

// TestInvokeHandlerError verifies handler errors map to KindHandlerError.
func TestInvokeHandlerError(t *testing.T) {
	failing := tools.Descriptor[*appState]{
		Name: "broken",
		Handler: func(ctx context.Context, s *appState, args tools.Args) (tools.Result, error) {
			return tools.Result{}, context.DeadlineExceeded
		},
	}
	engine := newTestEngine(t, &appState{}, failing)

	outcome := engine.Invoke(context.Background(), Request{ToolName: "broken"})
	if !outcome.Failed() || outcome.Failure.Kind != KindHandlerError {
		t.Errorf("Invoke(broken) = %+v, want KindHandlerError", outcome)
	}
}

// TestInvokePanicRecovered verifies a panicking handler is converted to
// a failure and the engine keeps serving subsequent calls.
func TestInvokePanicRecovered(t *testing.T) {
	panicky := tools.Descriptor[*appState]{
		Name: "panicky",
		Handler: func(ctx context.Context, s *appState, args tools.Args) (tools.Result, error) {
			panic("handler exploded")
		},
	}
	engine := newTestEngine(t, &appState{}, panicky, echoTool())

	outcome := engine.Invoke(context.Background(), Request{ToolName: "panicky"})
	if !outcome.Failed() || outcome.Failure.Kind != KindHandlerError {
		t.Fatalf("Invoke(panicky) = %+v, want KindHandlerError", outcome)
	}

	// Движок живой после паники
	outcome = engine.Invoke(context.Background(), Request{
		ToolName:  "echo",
		Arguments: map[string]any{"query": "still alive"},
	})
	if outcome.Failed() {
		t.Errorf("Invoke(echo) after panic failed: %+v", outcome.Failure)
	}
}

// TestInvokeMutatesSharedState verifies handlers see and mutate the
// same state instance across calls.
func TestInvokeMutatesSharedState(t *testing.T) {
	bump := tools.Descriptor[*appState]{
		Name: "bump",
		Handler: func(ctx context.Context, s *appState, args tools.Args) (tools.Result, error) {
			s.counter++
			return tools.Result{Text: "bumped"}, nil
		},
	}
	state := &appState{}
	engine := newTestEngine(t, state, bump)

	for i := 0; i < 3; i++ {
		if outcome := engine.Invoke(context.Background(), Request{ToolName: "bump"}); outcome.Failed() {
			t.Fatalf("Invoke(bump) #%d failed: %+v", i, outcome.Failure)
		}
	}
	if state.counter != 3 {
		t.Errorf("counter = %d, want 3", state.counter)
	}
}
