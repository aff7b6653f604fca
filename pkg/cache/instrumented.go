package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumentedCache struct {
	next   Cache
	entity string
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewInstrumented wraps a Cache with hit/miss counters labelled by entity.
func NewInstrumented(next Cache, entity string, hits, misses *prometheus.CounterVec) Cache {
	return &instrumentedCache{
		next:   next,
		entity: entity,
		hits:   hits,
		misses: misses,
	}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.next.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		c.misses.WithLabelValues(c.entity).Inc()
		return nil, err
	}
	if err == nil {
		c.hits.WithLabelValues(c.entity).Inc()
	}
	return val, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.next.Set(ctx, key, value, ttl)
}

func (c *instrumentedCache) Delete(ctx context.Context, key string) error {
	return c.next.Delete(ctx, key)
}
