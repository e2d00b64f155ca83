package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate clears every variable Load reads and moves into an empty directory
// so a developer's config.yaml or .env does not leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GEMINI_API_KEY", "PORT", "FLASK_ENV", envConfigFile,
		"INTERVIEW_SERVER__PORT", "INTERVIEW_SERVER__DEBUG", "INTERVIEW_GEMINI__API_KEY",
		"INTERVIEW_GEMINI__MODEL", "INTERVIEW_GEMINI__TIMEOUT", "INTERVIEW_AUDIT__BACKEND",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 5000 {
			t.Errorf("port = %v, want 5000", cfg.Server.Port)
		}
		if cfg.Server.Debug {
			t.Error("debug should default to false")
		}
		if cfg.Server.RequestTimeout != 60*time.Second {
			t.Errorf("request_timeout = %v, want 60s", cfg.Server.RequestTimeout)
		}
		if cfg.Gemini.APIKey != "secret" {
			t.Errorf("api_key = %q, want secret", cfg.Gemini.APIKey)
		}
		if cfg.Gemini.Model != "gemini-2.0-flash-exp" {
			t.Errorf("model = %q", cfg.Gemini.Model)
		}
		if cfg.Gemini.BaseURL != "https://generativelanguage.googleapis.com" {
			t.Errorf("base_url = %q", cfg.Gemini.BaseURL)
		}
		if cfg.Gemini.Timeout != 30*time.Second {
			t.Errorf("gemini timeout = %v, want 30s", cfg.Gemini.Timeout)
		}
		if cfg.Audit.Backend != AuditBackendMemory {
			t.Errorf("audit backend = %q, want memory", cfg.Audit.Backend)
		}
		if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" || cfg.Metrics.Namespace != "interview" {
			t.Errorf("metrics = %+v", cfg.Metrics)
		}
		if cfg.Tracing.Enabled {
			t.Error("tracing should default to false")
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		isolate(t)

		_, err := Load()
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("Load() error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("legacy env names", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "secret")
		t.Setenv("PORT", "8081")
		t.Setenv("FLASK_ENV", "development")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 8081 {
			t.Errorf("port = %v, want 8081", cfg.Server.Port)
		}
		if !cfg.Server.Debug {
			t.Error("FLASK_ENV=development should enable debug")
		}
	})

	t.Run("non-development environment keeps debug off", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "secret")
		t.Setenv("FLASK_ENV", "production")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Debug {
			t.Error("debug should stay off")
		}
	})

	t.Run("prefixed env overrides legacy", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "legacy")
		t.Setenv("PORT", "8081")
		t.Setenv("INTERVIEW_GEMINI__API_KEY", "prefixed")
		t.Setenv("INTERVIEW_SERVER__PORT", "9000")
		t.Setenv("INTERVIEW_GEMINI__TIMEOUT", "5s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Gemini.APIKey != "prefixed" {
			t.Errorf("api_key = %q, want prefixed", cfg.Gemini.APIKey)
		}
		if cfg.Server.Port != 9000 {
			t.Errorf("port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.Gemini.Timeout != 5*time.Second {
			t.Errorf("gemini timeout = %v, want 5s", cfg.Gemini.Timeout)
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		isolate(t)
		t.Setenv("SURVEY_GEMINI_KEY", "from-secret")

		path := filepath.Join(t.TempDir(), "gateway.yaml")
		yaml := `
server:
  port: 7000
  log_file: interview_bot.log
gemini:
  api_key: ${SURVEY_GEMINI_KEY}
  model: gemini-1.5-pro
audit:
  backend: sqlite
  sqlite:
    path: /var/lib/interview/logs.db
metrics:
  enabled: false
`
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(envConfigFile, path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 7000 {
			t.Errorf("port = %v, want 7000", cfg.Server.Port)
		}
		if cfg.Server.LogFile != "interview_bot.log" {
			t.Errorf("log_file = %q", cfg.Server.LogFile)
		}
		if cfg.Gemini.APIKey != "from-secret" {
			t.Errorf("api_key = %q, want from-secret", cfg.Gemini.APIKey)
		}
		if cfg.Gemini.Model != "gemini-1.5-pro" {
			t.Errorf("model = %q", cfg.Gemini.Model)
		}
		if cfg.Audit.Backend != AuditBackendSQLite || cfg.Audit.SQLite.Path != "/var/lib/interview/logs.db" {
			t.Errorf("audit = %+v", cfg.Audit)
		}
		if cfg.Metrics.Enabled {
			t.Error("metrics should be disabled by the file")
		}
	})

	t.Run("env overrides yaml file", func(t *testing.T) {
		isolate(t)
		if err := os.WriteFile("config.yaml", []byte("server:\n  port: 7000\ngemini:\n  api_key: file\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("INTERVIEW_SERVER__PORT", "7001")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 7001 {
			t.Errorf("port = %v, want 7001", cfg.Server.Port)
		}
		if cfg.Gemini.APIKey != "file" {
			t.Errorf("api_key = %q, want file", cfg.Gemini.APIKey)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "secret")
		if err := os.WriteFile("config.yaml", []byte("server: [port"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := Load(); err == nil {
			t.Fatal("expected error for malformed yaml")
		}
	})

	t.Run("unknown audit backend", func(t *testing.T) {
		isolate(t)
		t.Setenv("GEMINI_API_KEY", "secret")
		t.Setenv("INTERVIEW_AUDIT__BACKEND", "postgres")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown audit backend")
		}
	})
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple substitution",
			input: "${TEST_VAR}",
			want:  "test-value",
		},
		{
			name:  "substitution in string",
			input: "prefix-${TEST_VAR}-suffix",
			want:  "prefix-test-value-suffix",
		},
		{
			name:  "no substitution",
			input: "plain-string",
			want:  "plain-string",
		},
		{
			name:  "undefined var",
			input: "${UNDEFINED_VAR}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := substituteEnvVars(tt.input)
			if got != tt.want {
				t.Errorf("substituteEnvVars() = %v, want %v", got, tt.want)
			}
		})
	}
}
