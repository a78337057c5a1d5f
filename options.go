package facetsync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Controller.
type Option interface {
	apply(*controllerConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*controllerConfig)

func (f optionFunc) apply(c *controllerConfig) { f(c) }

type controllerConfig struct {
	debounce time.Duration

	cacheAddr     string
	cachePassword string
	cacheTTL      time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
	onUpdate   func(ViewModel)
}

// WithDebounce sets the window within which rapid input changes collapse
// into one network cycle. Default: 400ms.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *controllerConfig) {
		c.debounce = d
	})
}

// WithTagCache caches facet tag lists in a Redis instance. ttl <= 0 uses
// the default of one minute.
func WithTagCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *controllerConfig) {
		c.cacheAddr = addr
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for controller operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *controllerConfig) {
		c.logger = l
	})
}

// WithPrometheus registers search metrics (cycle counts, durations,
// fallback and cache outcomes) on the given registerer. Pass nil to
// disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *controllerConfig) {
		c.metricsReg = reg
	})
}

// WithOnUpdate sets the callback invoked with every published view model.
// The callback runs on the cycle's goroutine and must not block; it must
// not call back into the Controller.
func WithOnUpdate(fn func(ViewModel)) Option {
	return optionFunc(func(c *controllerConfig) {
		c.onUpdate = fn
	})
}
