package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

const validConfig = `
models:
  default_chat: "chat"
  default_summarize: "sum"
  definitions:
    chat:
      provider: "openai"
      model_name: "gpt-4o"
      api_key: "${TEST_CONFIG_API_KEY}"
      max_tokens: 4096
      temperature: 0.6
      timeout: "60s"
    sum:
      provider: "openai"
      model_name: "gpt-4o-mini"
      api_key: "plain-key"
research:
  min_duration: "5m"
  notes_db: "notes.db"
hooks:
  compress_at: 50000
`

// TestLoadExpandsEnv verifies ${VAR} substitution and yaml parsing.
func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_API_KEY", "secret-from-env")
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	chat, ok := cfg.GetChatModel("")
	if !ok {
		t.Fatal("GetChatModel() did not find default chat model")
	}
	if chat.APIKey != "secret-from-env" {
		t.Errorf("APIKey = %q, want env-substituted value", chat.APIKey)
	}
	if chat.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", chat.Timeout)
	}
	if cfg.Research.MinDuration != 5*time.Minute {
		t.Errorf("MinDuration = %v, want 5m", cfg.Research.MinDuration)
	}
	if cfg.Hooks.CompressAt != 50000 {
		t.Errorf("CompressAt = %d, want 50000", cfg.Hooks.CompressAt)
	}
}

// TestLoadValidatesModelAliases verifies undefined aliases are rejected.
func TestLoadValidatesModelAliases(t *testing.T) {
	path := writeConfig(t, `
models:
  default_chat: "ghost"
  definitions:
    chat:
      model_name: "gpt-4o"
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted config with undefined default_chat alias")
	}
}

// TestLoadMissingFile verifies a clear error for absent configs.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() succeeded on missing file")
	}
}

// TestGetSummarizeModelFallback verifies fallback to the chat model.
func TestGetSummarizeModelFallback(t *testing.T) {
	cfg := &AppConfig{
		Models: ModelsConfig{
			DefaultChat: "chat",
			Definitions: map[string]ModelDef{
				"chat": {ModelName: "gpt-4o"},
			},
		},
	}

	m, ok := cfg.GetSummarizeModel()
	if !ok || m.ModelName != "gpt-4o" {
		t.Errorf("GetSummarizeModel() = %+v ok=%v, want chat model fallback", m, ok)
	}
}

// TestSearchEngineDefaults verifies GetDefaults fills zero values only.
func TestSearchEngineDefaults(t *testing.T) {
	cfg := SearchEngineConfig{RateLimit: 10}
	got := cfg.GetDefaults()

	if got.RateLimit != 10 {
		t.Errorf("RateLimit = %d, want explicit value kept", got.RateLimit)
	}
	if got.BurstLimit != 5 || got.RetryAttempts != 3 || got.Timeout != "30s" {
		t.Errorf("defaults not applied: %+v", got)
	}
}
