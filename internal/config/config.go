package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "chartlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Browser   BrowserConfig   `yaml:"browser" envconfig:"BROWSER"`
}

// ServerConfig contains HTTP server configuration.
// Host and Port have no envconfig tag so HOST and PORT are never read.
type ServerConfig struct {
	Host            string        `yaml:"host" default:"127.0.0.1"`
	Port            int           `yaml:"port" default:"8501"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the chart dataset.
// Path has no envconfig tag so envconfig never falls back to the
// unprefixed PATH variable.
type DataConfig struct {
	Path  string `yaml:"path" default:"data/Atlantic_United_Kingdom.csv"`
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8501,http://127.0.0.1:8501"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"100"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/chartlens.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"chartlens"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"4096"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE" default:"65536"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// BrowserConfig controls opening the dashboard on launch
type BrowserConfig struct {
	Open bool `yaml:"open" envconfig:"OPEN" default:"true"`
}

// Sources names the optional files Load reads. Empty fields fall back to
// the usual locations.
type Sources struct {
	EnvFile    string
	ConfigFile string
}

// Load loads configuration from .env, environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(Sources{})
}

// LoadFrom is Load with explicit file locations.
func LoadFrom(src Sources) (*Config, error) {
	envFile := src.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// .env never overrides variables already set in the process
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := src.ConfigFile
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A value set in the
// environment wins; a value left at its default is replaced by the file's.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()

	mergeString(&envConfig.Server.Host, fileConfig.Server.Host, def.Server.Host)
	mergeInt(&envConfig.Server.Port, fileConfig.Server.Port, def.Server.Port)
	mergeDuration(&envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, def.Server.ReadTimeout)
	mergeDuration(&envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, def.Server.WriteTimeout)
	mergeDuration(&envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, def.Server.IdleTimeout)
	mergeDuration(&envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, def.Server.ShutdownTimeout)
	mergeDuration(&envConfig.Server.RequestTimeout, fileConfig.Server.RequestTimeout, def.Server.RequestTimeout)

	mergeString(&envConfig.Data.Path, fileConfig.Data.Path, def.Data.Path)
	mergeString(&envConfig.Data.Sheet, fileConfig.Data.Sheet, def.Data.Sheet)

	if len(fileConfig.Security.AllowedOrigins) > 0 &&
		strings.Join(envConfig.Security.AllowedOrigins, ",") == strings.Join(def.Security.AllowedOrigins, ",") {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if fileConfig.Security.RateLimit.RPS > 0 && envConfig.Security.RateLimit.RPS == def.Security.RateLimit.RPS {
		envConfig.Security.RateLimit.RPS = fileConfig.Security.RateLimit.RPS
	}
	mergeInt(&envConfig.Security.RateLimit.Burst, fileConfig.Security.RateLimit.Burst, def.Security.RateLimit.Burst)

	mergeString(&envConfig.Logging.Level, fileConfig.Logging.Level, def.Logging.Level)
	mergeString(&envConfig.Logging.Output, fileConfig.Logging.Output, def.Logging.Output)
	mergeString(&envConfig.Logging.FilePath, fileConfig.Logging.FilePath, def.Logging.FilePath)

	mergeString(&envConfig.Telemetry.ServiceName, fileConfig.Telemetry.ServiceName, def.Telemetry.ServiceName)
	mergeString(&envConfig.Telemetry.TraceExporter, fileConfig.Telemetry.TraceExporter, def.Telemetry.TraceExporter)
	if fileConfig.Telemetry.TracingEnabled {
		envConfig.Telemetry.TracingEnabled = true
	}

	mergeDuration(&envConfig.WebSocket.PingPeriod, fileConfig.WebSocket.PingPeriod, def.WebSocket.PingPeriod)
	mergeDuration(&envConfig.WebSocket.PongWait, fileConfig.WebSocket.PongWait, def.WebSocket.PongWait)

	return envConfig
}

func mergeString(dst *string, file, def string) {
	if file != "" && *dst == def {
		*dst = file
	}
}

func mergeInt(dst *int, file, def int) {
	if file != 0 && *dst == def {
		*dst = file
	}
}

func mergeDuration(dst *time.Duration, file, def time.Duration) {
	if file != 0 && *dst == def {
		*dst = file
	}
}

// Validate checks ranges and normalises logging settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if strings.TrimSpace(c.Data.Path) == "" {
		return fmt.Errorf("data path must be set")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	case "":
		c.Telemetry.TraceExporter = "none"
	default:
		return fmt.Errorf("unknown trace exporter %q", c.Telemetry.TraceExporter)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/chartlens.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Data: DataConfig{
			Path: DefaultDataPath,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501", "http://127.0.0.1:8501"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/chartlens.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			MaxMessageSize:  64 << 10,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Browser: BrowserConfig{
			Open: true,
		},
	}
}
