// Package config loads runtime settings from TRIPPLANNER_* variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/internal/localstate"
	"github.com/travelmate/tripplanner/internal/logger"
)

// Prefix is the envconfig prefix for every variable.
const Prefix = "TRIPPLANNER"

// Config holds the settings shared by the CLI and the mock API.
// Example: TRIPPLANNER_API_URL, TRIPPLANNER_STATE_BACKEND
type Config struct {
	// Remote API
	APIURL        string        `envconfig:"API_URL" default:"http://localhost:3000"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"1"`
	RateLimit     float64       `envconfig:"RATE_LIMIT" default:"0"`
	RateBurst     int           `envconfig:"RATE_BURST" default:"1"`

	// Local state
	StateBackend string `envconfig:"STATE_BACKEND" default:"sqlite"`
	StatePath    string `envconfig:"STATE_PATH" default:""`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:""`
	RedisPrefix  string `envconfig:"REDIS_PREFIX" default:"tripplanner:"`

	// Itinerary rules
	IdentityFallbackID int64 `envconfig:"IDENTITY_FALLBACK_ID" default:"0"`
	CapacityLimit      int   `envconfig:"CAPACITY_LIMIT" default:"200"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// Mock API
	MockAddr   string        `envconfig:"MOCK_ADDR" default:":3000"`
	MockSecret string        `envconfig:"MOCK_SECRET" default:"tripplanner-dev-secret"`
	MockTTL    time.Duration `envconfig:"MOCK_TOKEN_TTL" default:"1h"`
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case localstate.BackendSQLite, localstate.BackendFile, localstate.BackendMemory:
	case localstate.BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STATE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported STATE_BACKEND: %s", c.StateBackend)
	}
	if c.APIURL == "" {
		return fmt.Errorf("API_URL cannot be empty")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be >= 1")
	}
	if c.CapacityLimit < 1 {
		return fmt.Errorf("CAPACITY_LIMIT must be >= 1")
	}
	if c.IdentityFallbackID < 0 {
		return fmt.Errorf("IDENTITY_FALLBACK_ID must not be negative")
	}
	return nil
}

// New parses the environment and validates the result.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Str("state_backend", cfg.StateBackend).
		Dur("http_timeout", cfg.HTTPTimeout).
		Int("retry_attempts", cfg.RetryAttempts).
		Float64("rate_limit", cfg.RateLimit).
		Int("capacity_limit", cfg.CapacityLimit).
		Bool("identity_fallback", cfg.IdentityFallbackID > 0).
		Msg("Configuration loaded")

	return &cfg, nil
}

// StateOptions maps the local-state settings onto localstate.Options.
func (c *Config) StateOptions() localstate.Options {
	return localstate.Options{
		Backend:     c.StateBackend,
		Path:        c.StatePath,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

// InitLogger installs the console logger on log.Logger and applies the level.
// debug forces debug level and the client's HTTP dump transport.
func InitLogger(level string, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.Console(os.Stderr, true)

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		_ = os.Setenv("TRIPPLANNER_DEBUG", "true")
		log.Debug().Msg("debug logging enabled")
		return
	}
	zerolog.SetGlobalLevel(logger.ParseLevel(level))
}
