package goPerm

import (
	"errors"
	"time"
)

// Config defines a public type used by goPerm APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Redis   RedisConfig
	Events  EventConfig
	Metrics MetricsConfig
	Grant   GrantConfig
}

// RedisConfig defines a public type used by goPerm APIs.
//
// RedisConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisConfig struct {
	Prefix string
}

// EventConfig defines a public type used by goPerm APIs.
//
// EventConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goPerm APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// GrantConfig defines a public type used by goPerm APIs.
//
// GrantConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GrantConfig struct {
	Enabled       bool
	TTL           time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// DefaultConfig returns the recommended baseline configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Redis: RedisConfig{
			Prefix: "gp",
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Grant: GrantConfig{
			Enabled:       false,
			TTL:           5 * time.Minute,
			SigningMethod: "ed25519",
		},
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c Config) Validate() error {
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("event buffer size cannot be negative")
	}
	if c.Grant.Enabled {
		if c.Grant.TTL <= 0 {
			return errors.New("grant TTL must be positive")
		}
		if c.Grant.SigningMethod != "ed25519" && c.Grant.SigningMethod != "hs256" {
			return errors.New("unsupported grant signing method")
		}
		if len(c.Grant.PrivateKey) == 0 {
			return errors.New("grant signing requires a private key")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Grant.PrivateKey = cloneBytes(cfg.Grant.PrivateKey)
	out.Grant.PublicKey = cloneBytes(cfg.Grant.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
