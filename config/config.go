// Package config loads and validates service configuration from YAML files
// with environment-variable overrides. It covers the HTTP server, session
// lifetimes and the connector catalog (which connectors are enabled, their
// upstream base URLs and credential values).
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server     ServerConfig               `yaml:"server"`
	Session    SessionConfig              `yaml:"session"`
	Connectors map[string]ConnectorConfig `yaml:"connectors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// SessionConfig holds session and response-cache lifetimes.
type SessionConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// ConnectorConfig describes one configured connector instance.
type ConnectorConfig struct {
	Enabled     bool              `yaml:"enabled"`
	BaseURL     string            `yaml:"baseUrl"`
	Credentials map[string]string `yaml:"credentials"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:      30 * time.Minute,
			CacheTTL: 5 * time.Minute,
		},
		Connectors: map[string]ConnectorConfig{},
	}
}

// Validate checks the configuration for inconsistencies, collecting every
// problem rather than stopping at the first.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}
	if c.Session.CacheTTL <= 0 {
		problems = append(problems, "session.cacheTTL must be positive")
	}
	for name, cc := range c.Connectors {
		if cc.Enabled && cc.BaseURL == "" {
			problems = append(problems, fmt.Sprintf("connectors.%s is enabled but has no baseUrl", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EnabledConnectors returns the names of enabled connectors in no particular
// order.
func (c *Config) EnabledConnectors() []string {
	var names []string
	for name, cc := range c.Connectors {
		if cc.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// applyEnvOverrides reads CK_* environment variables and overrides the
// corresponding config fields. Connector credentials can be injected with
// CK_CONNECTOR_<NAME>_<KEY>, e.g. CK_CONNECTOR_VAULT_API_TOKEN.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("Warning: ignoring malformed CK_SERVER_PORT value %q: %v", v, err)
		}
	}
	if v := os.Getenv("CK_SESSION_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = ttl
		} else {
			log.Printf("Warning: ignoring malformed CK_SESSION_TTL value %q: %v", v, err)
		}
	}
	if v := os.Getenv("CK_SESSION_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Session.CacheTTL = ttl
		} else {
			log.Printf("Warning: ignoring malformed CK_SESSION_CACHE_TTL value %q: %v", v, err)
		}
	}

	for name, cc := range cfg.Connectors {
		prefix := "CK_CONNECTOR_" + strings.ToUpper(name) + "_"
		if v := os.Getenv(prefix + "BASE_URL"); v != "" {
			cc.BaseURL = v
		}
		for _, env := range os.Environ() {
			pair := strings.SplitN(env, "=", 2)
			if len(pair) != 2 || !strings.HasPrefix(pair[0], prefix) || pair[0] == prefix+"BASE_URL" {
				continue
			}
			key := strings.ToLower(strings.TrimPrefix(pair[0], prefix))
			if cc.Credentials == nil {
				cc.Credentials = make(map[string]string)
			}
			cc.Credentials[key] = pair[1]
		}
		cfg.Connectors[name] = cc
	}
}
