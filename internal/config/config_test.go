package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate keeps the developer's environment and home config out of Load.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"OPENAI_API_KEY", "AGENT_API_KEY", "CONTENTSTUDIO_AGENT_API_KEY",
		"AGENT_PROVIDER", "REDIS_ADDR", "DEBUG", "CONTENTSTUDIO_DEBUG",
	} {
		t.Setenv(key, "")
	}
	Reset()
	t.Cleanup(Reset)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Agent.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Agent.Provider)
	}
	if cfg.Agent.AgentTimeout() != 90*time.Second {
		t.Errorf("agent timeout = %v, want 90s", cfg.Agent.AgentTimeout())
	}
	if cfg.History.Backend != "file" {
		t.Errorf("history backend = %q, want file", cfg.History.Backend)
	}
	if want := filepath.Join(".contentstudio", "content_studio_history.json"); cfg.History.File != want {
		t.Errorf("history file = %q, want %q", cfg.History.File, want)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Export.Format != "txt" {
		t.Errorf("export format = %q, want txt", cfg.Export.Format)
	}

	if Get() != cfg {
		t.Error("Get should return the loaded config")
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := writeConfig(t, `
agent:
  provider: sample
history:
  backend: memory
export:
  format: md
server:
  port: 9090
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.Provider != "sample" || cfg.History.Backend != "memory" || cfg.Export.Format != "md" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.App.ConfigFile != path {
		t.Errorf("config file = %q, want %q", cfg.App.ConfigFile, path)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"provider", "agent:\n  provider: claude\n", "Unknown agent provider"},
		{"backend", "history:\n  backend: mongo\n", "Unknown history backend"},
		{"format", "export:\n  format: pdf\n", "Unknown export format"},
		{"timeout", "agent:\n  timeout: soon\n", "agent.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateAgent(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Agent: Agent{Provider: "gemini"}}, true},
		{"gemini placeholder", Config{Agent: Agent{Provider: "gemini"}, AI: AI{Gemini: GeminiConfig{APIKey: "your-api-key"}}}, true},
		{"gemini with key", Config{Agent: Agent{Provider: "gemini"}, AI: AI{Gemini: GeminiConfig{APIKey: "abc123"}}}, false},
		{"openai without key", Config{Agent: Agent{Provider: "openai"}}, true},
		{"openai with key", Config{Agent: Agent{Provider: "openai"}, AI: AI{OpenAI: OpenAIConfig{APIKey: "sk-test"}}}, false},
		{"remote without url", Config{Agent: Agent{Provider: "remote"}}, true},
		{"remote with url", Config{Agent: Agent{Provider: "remote", Remote: RemoteConfig{URL: "http://agents.local"}}}, false},
		{"sample", Config{Agent: Agent{Provider: "sample"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateAgent()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAgent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAgentTimeout(t *testing.T) {
	if got := (Agent{Timeout: "2m"}).AgentTimeout(); got != 2*time.Minute {
		t.Errorf("AgentTimeout = %v, want 2m", got)
	}
	if got := (Agent{}).AgentTimeout(); got != 0 {
		t.Errorf("empty timeout = %v, want 0", got)
	}
}
