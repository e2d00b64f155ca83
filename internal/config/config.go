package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "INTERVIEW_"
	envConfigFile = "INTERVIEW_CONFIG_FILE"

	defaultConfigFile = "config.yaml"

	AuditBackendMemory = "memory"
	AuditBackendSQLite = "sqlite"
)

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is required")

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	Audit   AuditConfig   `koanf:"audit"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	Debug          bool          `koanf:"debug"`
	LogFile        string        `koanf:"log_file"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type AuditConfig struct {
	Backend string       `koanf:"backend"` // memory, sqlite
	SQLite  SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

type TracingConfig struct {
	Enabled bool `koanf:"enabled"`
}

var defaults = map[string]any{
	"server.port":            5000,
	"server.request_timeout": 60 * time.Second,
	"gemini.base_url":        "https://generativelanguage.googleapis.com",
	"gemini.model":           "gemini-2.0-flash-exp",
	"gemini.timeout":         30 * time.Second,
	"audit.backend":          AuditBackendMemory,
	"audit.sqlite.path":      "interview_logs.db",
	"metrics.enabled":        true,
	"metrics.path":           "/metrics",
	"metrics.namespace":      "interview",
	"tracing.enabled":        false,
}

// legacyEnv maps the variable names the survey deployment already uses.
var legacyEnv = map[string]string{
	"GEMINI_API_KEY": "gemini.api_key",
	"PORT":           "server.port",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads, in increasing precedence: the YAML file, legacy environment
// names, then INTERVIEW_ prefixed variables. Unset keys take defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(envConfigFile)
	if path == "" {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyKey), nil); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		if s == envConfigFile {
			return ""
		}
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Gemini.APIKey = substituteEnvVars(cfg.Gemini.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// legacyKey translates legacy variables; an empty key makes koanf skip the variable.
func legacyKey(name, value string) (string, any) {
	if name == "FLASK_ENV" {
		if value == "development" {
			return "server.debug", true
		}
		return "", nil
	}
	if value == "" {
		return "", nil
	}
	return legacyEnv[name], value
}

// Validate reports configuration the gateway cannot start with.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Audit.Backend {
	case AuditBackendMemory:
	case AuditBackendSQLite:
		if c.Audit.SQLite.Path == "" {
			return errors.New("audit.sqlite.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown audit backend %q", c.Audit.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
