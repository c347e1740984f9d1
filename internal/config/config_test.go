package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chartlens/internal/errors"
)

// isolate points Load at files that do not exist so only the environment
// set by the test is seen.
func isolate(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		EnvFile:    filepath.Join(dir, "missing.env"),
		ConfigFile: "",
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(isolate(t))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultDataPath, cfg.Data.Path)
	assert.Equal(t, []string{"http://localhost:8501", "http://127.0.0.1:8501"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Browser.Open)
	assert.Equal(t, "127.0.0.1:8501", cfg.Server.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHARTLENS_SERVER_HOST", "0.0.0.0")
	t.Setenv("CHARTLENS_SERVER_PORT", "9000")
	t.Setenv("CHARTLENS_DATA_PATH", "/srv/chart.xlsx")
	t.Setenv("CHARTLENS_LOGGING_LEVEL", "debug")
	t.Setenv("CHARTLENS_SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CHARTLENS_BROWSER_OPEN", "false")

	cfg, err := LoadFrom(isolate(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "/srv/chart.xlsx", cfg.Data.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.False(t, cfg.Browser.Open)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := writeTemp(t, ".env", "CHARTLENS_SERVER_PORT=9100\nCHARTLENS_DATA_SHEET=Chart\n")
	t.Setenv("CHARTLENS_SERVER_PORT", "9200")
	// godotenv writes into the process environment; clean up after the test
	t.Cleanup(func() { os.Unsetenv("CHARTLENS_DATA_SHEET") })

	cfg, err := LoadFrom(Sources{EnvFile: envFile})
	require.NoError(t, err)

	// process environment wins over .env
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "Chart", cfg.Data.Sheet)
}

func TestLoadConfigFile(t *testing.T) {
	file := writeTemp(t, "config.yaml", `
server:
  port: 8600
  read_timeout: 5s
data:
  path: data/other.csv
logging:
  level: warn
telemetry:
  trace_exporter: stdout
  tracing_enabled: true
`)
	t.Setenv("CHARTLENS_LOGGING_LEVEL", "error")

	src := isolate(t)
	src.ConfigFile = file
	cfg, err := LoadFrom(src)
	require.NoError(t, err)

	assert.Equal(t, 8600, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/other.csv", cfg.Data.Path)
	assert.Equal(t, "error", cfg.Logging.Level, "environment overrides file")
	assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Telemetry.TracingEnabled)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad port env", func(t *testing.T) {
		t.Setenv("CHARTLENS_SERVER_PORT", "not-a-number")
		_, err := LoadFrom(isolate(t))
		assert.Error(t, err)
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("CHARTLENS_SERVER_PORT", "70000")
		_, err := LoadFrom(isolate(t))
		assert.ErrorContains(t, err, "invalid server port")

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		src := isolate(t)
		src.ConfigFile = writeTemp(t, "config.yaml", "server: [")
		_, err := LoadFrom(src)
		assert.ErrorContains(t, err, "failed to load config from file")
	})

	t.Run("missing config file", func(t *testing.T) {
		src := isolate(t)
		src.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := LoadFrom(src)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, "write timeout"},
		{"empty data path", func(c *Config) { c.Data.Path = " " }, "data path"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimit.RPS = 0 }, "rate limit"},
		{"unknown exporter", func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }, "trace exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateNormalisesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/chartlens.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	env := *Default()
	env.Server.Port = 9999

	file := Config{}
	file.Server.Port = 7000
	file.Server.Host = "0.0.0.0"
	file.Data.Path = "file.csv"

	merged := mergeConfigs(file, env)
	assert.Equal(t, 9999, merged.Server.Port)
	assert.Equal(t, "0.0.0.0", merged.Server.Host)
	assert.Equal(t, "file.csv", merged.Data.Path)
}
