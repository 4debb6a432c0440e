package infrastructure

import (
	"fmt"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/logger"

	"github.com/dgraph-io/ristretto"
)

// RangeCache keeps recent range rollups so repeated custom ranges and week
// comparisons do not hit the remote service again within the TTL.
type RangeCache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// creates a cache holding roughly maxItems rollups
func NewRangeCache(maxItems int, ttl time.Duration, log *logger.Logger) (*RangeCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("range cache size must be positive, got %d", maxItems)
	}

	// every entry costs 1, so MaxCost is an item count; the internal
	// per-entry overhead must not count against it
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(maxItems) * 10,
		MaxCost:            int64(maxItems),
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create range cache: %w", err)
	}

	log.WithFields(map[string]any{
		"max_items": maxItems,
		"ttl":       ttl.String(),
	}).Info("Range cache initialized")

	return &RangeCache{client: client, ttl: ttl}, nil
}

func rangeKey(startDate, endDate string) string {
	return startDate + "|" + endDate
}

// Get returns a cached rollup for the exact span.
func (c *RangeCache) Get(startDate, endDate string) (*domain.RollupDataset, bool) {
	value, ok := c.client.Get(rangeKey(startDate, endDate))
	if !ok {
		return nil, false
	}
	dataset, ok := value.(domain.RollupDataset)
	if !ok {
		return nil, false
	}
	return &dataset, true
}

// Set stores a successful rollup. Each entry costs 1 against MaxCost.
func (c *RangeCache) Set(startDate, endDate string, dataset *domain.RollupDataset) {
	if dataset == nil {
		return
	}
	c.client.SetWithTTL(rangeKey(startDate, endDate), *dataset, 1, c.ttl)
	// sets are buffered; wait so the next Get observes the value
	c.client.Wait()
}

// HitRatio is 0 until the first lookup.
func (c *RangeCache) HitRatio() float64 {
	if c.client.Metrics == nil {
		return 0
	}
	return c.client.Metrics.Ratio()
}

func (c *RangeCache) Close() {
	c.client.Close()
}
