package reconcile

import (
	"time"

	appconfig "clipbounty/internal/config"
)

// Config controls the metrics reconciliation loop.
type Config struct {
	Interval    time.Duration
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		Interval:    300 * time.Second,
		Concurrency: 8,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}

	if c.Concurrency <= 0 {
		c.Concurrency = defaults.Concurrency
	}
	return c
}

// NewConfig builds the loop config from application config, falling back
// to defaults for anything unset.
func NewConfig(cfg *appconfig.Config) Config {
	return Config{
		Interval:    cfg.Reconcile.Interval,
		Concurrency: cfg.Reconcile.Concurrency,
	}.withDefaults()
}
