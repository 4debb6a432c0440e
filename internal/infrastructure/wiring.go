package infrastructure

import (
	"fmt"

	"jobclicks/pkg/config"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"
)

// NewAnalyticsClientFromConfig builds the analytics client and, when enabled,
// its range cache. The returned cache is nil when caching is off; callers
// close it on shutdown.
func NewAnalyticsClientFromConfig(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*AnalyticsClient, *RangeCache, error) {
	var cache *RangeCache
	if cfg.Cache.Enabled {
		var err error
		cache, err = NewRangeCache(cfg.Cache.MaxItems, cfg.Cache.TTL, log)
		if err != nil {
			return nil, nil, err
		}
	}

	client, err := NewAnalyticsClient(
		cfg.Analytics.BaseURL,
		cfg.Analytics.RequestTimeout,
		cfg.Analytics.RateLimitPerSecond,
		cfg.Analytics.RateLimitBurst,
		cache,
		log,
		m,
	)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, nil, fmt.Errorf("failed to create analytics client: %w", err)
	}

	return client, cache, nil
}
