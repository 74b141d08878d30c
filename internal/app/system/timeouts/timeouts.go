// Package timeouts holds the per-operation deadlines used by handlers and jobs.
package timeouts

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure or ConfigureFromEnv changes them.
const (
	DefaultPing     = 2 * time.Second
	DefaultStore    = 5 * time.Second
	DefaultUpstream = 10 * time.Second
	DefaultRefresh  = 30 * time.Second
)

// Config holds timeout values. Zero fields are left unchanged by Configure.
type Config struct {
	Ping     time.Duration // health checks
	Store    time.Duration // single Mongo operations
	Upstream time.Duration // one OVA backend call
	Refresh  time.Duration // folder tree refresh and other background work
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Store:    DefaultStore,
		Upstream: DefaultUpstream,
		Refresh:  DefaultRefresh,
	}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return Current().Ping }

// Store returns the timeout for a Mongo read or write.
func Store() time.Duration { return Current().Store }

// Upstream returns the timeout for one OVA backend request.
func Upstream() time.Duration { return Current().Upstream }

// Refresh returns the timeout for background refreshes.
func Refresh() time.Duration { return Current().Refresh }

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set(&cur.Ping, cfg.Ping)
	set(&cur.Store, cfg.Store)
	set(&cur.Upstream, cfg.Upstream)
	set(&cur.Refresh, cfg.Refresh)
}

func set(dst *time.Duration, d time.Duration) {
	if d > 0 {
		*dst = d
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads OVAVIEW_TIMEOUT_{PING,STORE,UPSTREAM,REFRESH} and
// returns how many values were applied. Unparseable or non-positive values
// are ignored.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"PING":     &cfg.Ping,
		"STORE":    &cfg.Store,
		"UPSTREAM": &cfg.Upstream,
		"REFRESH":  &cfg.Refresh,
	} {
		v := strings.TrimSpace(os.Getenv("OVAVIEW_TIMEOUT_" + name))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout derives a context that logs a warning on cancel when the
// deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
