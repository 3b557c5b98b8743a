package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "taskwell.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Expected 24h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Chat.Provider != "mock" {
		t.Errorf("Expected mock provider by default, got %s", cfg.Chat.Provider)
	}
	if cfg.OAuth.Enabled {
		t.Error("OAuth should be disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskwell.yaml")
	content := `
server:
  port: 9999
auth:
  jwt_secret: file-secret
  token_ttl: 1h
chat:
  provider: anthropic
  backend_url: http://backend:8080
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "file-secret" || cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("Unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Chat.Provider != "anthropic" || cfg.Chat.BackendURL != "http://backend:8080" {
		t.Errorf("Unexpected chat config: %+v", cfg.Chat)
	}
	// Untouched keys keep their defaults.
	if cfg.Chat.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %s", cfg.Chat.Timeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TASKWELL_SERVER_PORT", "7070")
	t.Setenv("TASKWELL_AUTH_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Expected env secret, got %s", cfg.Auth.JWTSecret)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load("/no/such/file.yaml"); err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}
}
