package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	TokenEnv = "HANDY_IMAGE_CONVERTER_TOKEN"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	FormatText = "text"
	FormatJSON = "json"
)

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Prefix   string `envconfig:"REDIS_PREFIX" default:"handy_image_converter"`
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

type Config struct {
	Token              string        `envconfig:"HANDY_IMAGE_CONVERTER_TOKEN"`
	ScratchDir         string        `envconfig:"SCRATCH_DIR"`
	StateBackend       string        `envconfig:"STATE_BACKEND" default:"memory"`
	PendingTTL         time.Duration `envconfig:"PENDING_TTL" default:"24h"`
	SweepInterval      time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	PollTimeout        time.Duration `envconfig:"POLL_TIMEOUT" default:"50s"`
	DropPendingUpdates bool          `envconfig:"DROP_PENDING_UPDATES" default:"true"`
	Redis              RedisConfig
	Logging            LoggingConfig
}

// Load reads config.env (when present) into the environment and then the
// environment into Config. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills derived defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return fmt.Errorf("%s is required", TokenEnv)
	}

	cfg.ScratchDir = strings.TrimSpace(cfg.ScratchDir)
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = filepath.Join(os.TempDir(), "handy_image_converter")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.StateBackend))
	if backend == "" {
		backend = BackendMemory
	}
	switch backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.Redis.Host) == "" {
			return fmt.Errorf("REDIS_HOST is required when STATE_BACKEND is 'redis'")
		}
		if cfg.Redis.Port <= 0 || cfg.Redis.Port > 65535 {
			return fmt.Errorf("invalid REDIS_PORT %d", cfg.Redis.Port)
		}
		if cfg.Redis.DB < 0 {
			return fmt.Errorf("REDIS_DB must be >= 0")
		}
	default:
		return fmt.Errorf("invalid STATE_BACKEND %q; allowed: memory, redis", cfg.StateBackend)
	}
	cfg.StateBackend = backend

	if cfg.PendingTTL < 0 {
		return fmt.Errorf("PENDING_TTL must be >= 0")
	}
	if cfg.SweepInterval < 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be >= 0")
	}
	if cfg.PollTimeout <= 0 {
		return fmt.Errorf("POLL_TIMEOUT must be > 0")
	}

	level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	switch level {
	case "":
		level = "info"
	case "debug", "info", "warn", "error":
	case "warning":
		level = "warn"
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q; allowed: debug, info, warn, error", cfg.Logging.Level)
	}
	cfg.Logging.Level = level

	format := strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q; allowed: text, json", cfg.Logging.Format)
	}
	cfg.Logging.Format = format

	return nil
}
