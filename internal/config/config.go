package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jaminalder/codex-connect-four/internal/domain"
)

// Config holds the server settings read from the environment.
type Config struct {
	Addr              string
	Width             int
	Height            int
	IdleTTL           time.Duration
	SweepInterval     time.Duration
	HeartbeatInterval time.Duration
}

// Default returns the settings used when no environment overrides are set.
func Default() Config {
	return Config{
		Addr:              ":8080",
		Width:             domain.DefaultWidth,
		Height:            domain.DefaultHeight,
		IdleTTL:           2 * time.Hour,
		SweepInterval:     10 * time.Minute,
		HeartbeatInterval: 15 * time.Second,
	}
}

// Load reads the configuration from environment variables, falling back to Default.
func Load() Config {
	def := Default()
	addr := GetEnv("C4_ADDR", "")
	if addr == "" {
		addr = ":" + GetEnv("PORT", def.Addr[1:])
	}
	return Config{
		Addr:              addr,
		Width:             GetEnvAsInt("C4_WIDTH", def.Width),
		Height:            GetEnvAsInt("C4_HEIGHT", def.Height),
		IdleTTL:           GetEnvAsDuration("C4_IDLE_TTL", def.IdleTTL),
		SweepInterval:     GetEnvAsDuration("C4_SWEEP_INTERVAL", def.SweepInterval),
		HeartbeatInterval: GetEnvAsDuration("C4_HEARTBEAT", def.HeartbeatInterval),
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("board %dx%d: %w", c.Width, c.Height, domain.ErrInvalidDimensions)
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"C4_IDLE_TTL", c.IdleTTL},
		{"C4_SWEEP_INTERVAL", c.SweepInterval},
		{"C4_HEARTBEAT", c.HeartbeatInterval},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.val)
		}
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[CONFIG] Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration strings ("90s", "2h") or plain seconds.
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[CONFIG] Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
	return defaultValue
}
