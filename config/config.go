// Package config loads process-wide configuration from environment
// variables into a typed struct, with optional .env loading for local
// development.
//
// Load reads a .env file (if present) into the process environment on its
// first call, then populates the destination struct's fields from
// environment variables per their `env` struct tags, using
// github.com/caarlos0/env/v11.
package config

import (
	"log/slog"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Config holds every option this runtime recognizes from the process
// environment. Created once at startup and never mutated afterward.
type Config struct {
	// APIEndpoint is the control plane's host:port, supplied by the
	// container launcher. There is no sensible default; a missing value is
	// an InitializationError.
	APIEndpoint string `env:"AWS_LAMBDA_RUNTIME_API,required"`

	// LogLevel is the minimum level the logger emits.
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// MaxRequests bounds the number of cycles the Lifecycle runs before
	// draining cleanly. Zero means unbounded.
	MaxRequests int `env:"MAX_REQUESTS" envDefault:"0"`

	// StopSignal names the signal that triggers draining, in addition to
	// INT which is always trapped.
	StopSignal string `env:"STOP_SIGNAL" envDefault:"TERM"`

	// RequestTimeout bounds each individual control-plane HTTP call. Zero
	// means unbounded.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0"`
}

// Load reads .env (if present, first call only) then parses the process
// environment into cfg according to its `env` tags.
func Load(cfg *Config) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return env.Parse(cfg)
}

// MustLoad is Load but panics on error, for use in main() where a
// misconfigured process should fail fast and loudly.
func MustLoad(cfg *Config) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
