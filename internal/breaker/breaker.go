// Package breaker builds the circuit breakers that guard outbound calls.
package breaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Circuit breaker defaults.
const (
	DefaultFailThreshold = 5
	DefaultCooldown      = 30 * time.Second
	DefaultFailWindow    = 60 * time.Second
)

// Config holds circuit breaker settings.
type Config struct {
	FailThreshold uint32        // consecutive failures before opening
	Cooldown      time.Duration // how long to stay open before half-open
	FailWindow    time.Duration // closed-state counter reset period
}

// DefaultConfig returns the default config.
func DefaultConfig() Config {
	return Config{
		FailThreshold: DefaultFailThreshold,
		Cooldown:      DefaultCooldown,
		FailWindow:    DefaultFailWindow,
	}
}

// New creates a named breaker that logs state transitions.
func New(name string, cfg Config, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = DefaultFailThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.FailWindow <= 0 {
		cfg.FailWindow = DefaultFailWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.FailThreshold
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.FailWindow,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
