package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepshard/hyphae/pkg/tools"
	"github.com/deepshard/hyphae/pkg/upload"
)

// fakeUploader — мок upload-коллаборатора (Rule 9).
type fakeUploader struct {
	fail  bool
	calls [][]string
}

func (f *fakeUploader) Upload(ctx context.Context, paths []string) ([]upload.FileHandle, error) {
	f.calls = append(f.calls, append([]string(nil), paths...))
	if f.fail {
		return nil, fmt.Errorf("storage unavailable")
	}
	handles := make([]upload.FileHandle, 0, len(paths))
	for _, p := range paths {
		handles = append(handles, upload.FileHandle{
			Name: filepath.Base(p),
			Key:  "uploads/" + filepath.Base(p),
			URL:  "https://storage.local/" + filepath.Base(p),
		})
	}
	return handles, nil
}

func fileTool(paths []string) tools.Descriptor[*appState] {
	return tools.Descriptor[*appState]{
		Name: "send_report",
		Handler: func(ctx context.Context, s *appState, args tools.Args) (tools.Result, error) {
			// Мутация до стадии загрузки — как делает respond_to_user
			s.counter++
			return tools.Result{Text: "report ready", Files: paths, Final: true}, nil
		},
	}
}

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func engineWithUploader(t *testing.T, state *appState, up upload.Uploader, desc tools.Descriptor[*appState]) *Engine[*appState] {
	t.Helper()
	reg := tools.NewRegistry[*appState]()
	if err := reg.Register(desc); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	engine, err := NewEngine(reg, state, up)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}

// TestMarshalUploadSuccess verifies the happy path: files become handles,
// Final survives marshalling.
func TestMarshalUploadSuccess(t *testing.T) {
	path := tempFile(t)
	up := &fakeUploader{}
	engine := engineWithUploader(t, &appState{}, up, fileTool([]string{path}))

	outcome := engine.Invoke(context.Background(), Request{ToolName: "send_report"})
	if outcome.Failed() {
		t.Fatalf("Invoke() failed: %+v", outcome.Failure)
	}
	if !outcome.Success.Final {
		t.Error("Final flag was lost in marshalling")
	}
	if len(outcome.Success.Files) != 1 || outcome.Success.Files[0].Name != "report.txt" {
		t.Errorf("Files = %+v, want one handle for report.txt", outcome.Success.Files)
	}
}

// TestMarshalMissingFile verifies nonexistent paths fail the whole call
// before the uploader is ever contacted.
func TestMarshalMissingFile(t *testing.T) {
	up := &fakeUploader{}
	missing := filepath.Join(t.TempDir(), "ghost.txt")
	engine := engineWithUploader(t, &appState{}, up, fileTool([]string{missing}))

	outcome := engine.Invoke(context.Background(), Request{ToolName: "send_report"})
	if !outcome.Failed() || outcome.Failure.Kind != KindUploadError {
		t.Fatalf("Invoke() = %+v, want KindUploadError", outcome)
	}
	if len(up.calls) != 0 {
		t.Errorf("uploader was called %d times, want 0", len(up.calls))
	}
}

// TestMarshalRelativePathRejected verifies relative paths are refused.
func TestMarshalRelativePathRejected(t *testing.T) {
	engine := engineWithUploader(t, &appState{}, &fakeUploader{}, fileTool([]string{"relative/report.txt"}))

	outcome := engine.Invoke(context.Background(), Request{ToolName: "send_report"})
	if !outcome.Failed() || outcome.Failure.Kind != KindUploadError {
		t.Errorf("Invoke() = %+v, want KindUploadError", outcome)
	}
}

// TestMarshalNilUploader verifies attaching files without an uploader
// is an upload error, not a panic.
func TestMarshalNilUploader(t *testing.T) {
	path := tempFile(t)
	engine := engineWithUploader(t, &appState{}, nil, fileTool([]string{path}))

	outcome := engine.Invoke(context.Background(), Request{ToolName: "send_report"})
	if !outcome.Failed() || outcome.Failure.Kind != KindUploadError {
		t.Errorf("Invoke() = %+v, want KindUploadError", outcome)
	}
}

// TestMarshalFailedUploadKeepsStateMutations pins the contract: state
// changes made by the handler before a failed upload are NOT rolled back.
func TestMarshalFailedUploadKeepsStateMutations(t *testing.T) {
	path := tempFile(t)
	state := &appState{}
	engine := engineWithUploader(t, state, &fakeUploader{fail: true}, fileTool([]string{path}))

	outcome := engine.Invoke(context.Background(), Request{ToolName: "send_report"})
	if !outcome.Failed() || outcome.Failure.Kind != KindUploadError {
		t.Fatalf("Invoke() = %+v, want KindUploadError", outcome)
	}
	if state.counter != 1 {
		t.Errorf("counter = %d, want 1: handler mutations must survive upload failure", state.counter)
	}
}
