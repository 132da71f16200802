package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v, want nil", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want 30m", cfg.Session.TTL)
	}
	if cfg.Session.CacheTTL != 5*time.Minute {
		t.Errorf("Session.CacheTTL = %v, want 5m", cfg.Session.CacheTTL)
	}
	if len(cfg.Connectors) != 0 {
		t.Errorf("Connectors = %v, want empty map", cfg.Connectors)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  readTimeout: 10s
session:
  ttl: 1h
connectors:
  vault:
    enabled: true
    baseUrl: https://vault.example.com
    credentials:
      api_token: tok-123
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	// Unset fields keep their defaults.
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
	}

	vault, exists := cfg.Connectors["vault"]
	if !exists {
		t.Fatal("Connectors[\"vault\"] missing")
	}
	if !vault.Enabled {
		t.Error("vault.Enabled = false, want true")
	}
	if vault.BaseURL != "https://vault.example.com" {
		t.Errorf("vault.BaseURL = %q, want example URL", vault.BaseURL)
	}
	if vault.Credentials["api_token"] != "tok-123" {
		t.Errorf("vault credential api_token = %q, want %q", vault.Credentials["api_token"], "tok-123")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
connectors:
  vault:
    enabled: true
    baseUrl: https://vault.example.com
`)

	t.Setenv("CK_SERVER_PORT", "7070")
	t.Setenv("CK_SESSION_TTL", "45m")
	t.Setenv("CK_CONNECTOR_VAULT_API_TOKEN", "tok-from-env")
	t.Setenv("CK_CONNECTOR_VAULT_BASE_URL", "https://vault.internal")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Session.TTL != 45*time.Minute {
		t.Errorf("Session.TTL = %v, want 45m", cfg.Session.TTL)
	}

	vault := cfg.Connectors["vault"]
	if vault.BaseURL != "https://vault.internal" {
		t.Errorf("vault.BaseURL = %q, want env override", vault.BaseURL)
	}
	if vault.Credentials["api_token"] != "tok-from-env" {
		t.Errorf("vault credential api_token = %q, want env override", vault.Credentials["api_token"])
	}
}

func TestLoad_MalformedEnvOverridesKeepDefaultsAndWarn(t *testing.T) {
	t.Setenv("CK_SERVER_PORT", "not-a-number")
	t.Setenv("CK_SESSION_TTL", "soon")
	t.Setenv("CK_SESSION_CACHE_TTL", "later")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil (malformed overrides are skipped, not fatal)", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want default 30m", cfg.Session.TTL)
	}
	if cfg.Session.CacheTTL != 5*time.Minute {
		t.Errorf("Session.CacheTTL = %v, want default 5m", cfg.Session.CacheTTL)
	}

	logged := buf.String()
	for _, want := range []string{"CK_SERVER_PORT", "CK_SESSION_TTL", "CK_SESSION_CACHE_TTL"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output does not mention the skipped override %s: %q", want, logged)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"non-positive ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"non-positive cache ttl", func(c *Config) { c.Session.CacheTTL = -time.Second }, "session.cacheTTL"},
		{
			"enabled connector without base url",
			func(c *Config) {
				c.Connectors["vault"] = ConnectorConfig{Enabled: true}
			},
			"connectors.vault",
		},
		{
			"disabled connector without base url is fine",
			func(c *Config) {
				c.Connectors["vault"] = ConnectorConfig{Enabled: false}
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	cfg.Session.TTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want combined error")
	}
	for _, want := range []string{"server.port", "session.ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %v does not mention %q", err, want)
		}
	}
}

func TestEnabledConnectors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Connectors = map[string]ConnectorConfig{
		"vault": {Enabled: true, BaseURL: "https://vault.example.com"},
		"wiki":  {Enabled: false, BaseURL: "https://wiki.example.com"},
	}

	names := cfg.EnabledConnectors()
	if len(names) != 1 || names[0] != "vault" {
		t.Errorf("EnabledConnectors() = %v, want [vault]", names)
	}
}
