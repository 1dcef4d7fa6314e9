package store

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type config struct {
	now        func() time.Time
	newID      func() string
	retryDelay time.Duration
	validate   *validator.Validate
}

type Option func(*config)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *config) { c.newID = newID }
}

// WithRetryDelay sets the pause before the single conflict retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *config) { c.retryDelay = d }
}

func WithValidator(v *validator.Validate) Option {
	return func(c *config) { c.validate = v }
}

func buildConfig(defaults config, opts []Option) config {
	cfg := defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.validate == nil {
		cfg.validate = validator.New()
	}
	return cfg
}
