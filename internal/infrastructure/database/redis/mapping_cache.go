package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
)

// cachedMapping is the stored representation of a successful lookup.
type cachedMapping struct {
	Concept    concept.Concept `json:"concept"`
	Confidence float64         `json:"confidence"`
}

// MappingCache decorates a claim.CodeMapper with a Redis read-through cache.
// Only successful mappings are cached; not-found and outage results always
// hit the inner mapper again.  Cache failures degrade to the inner mapper,
// never to a request failure, and concurrent lookups of the same code are
// collapsed into one upstream call.
type MappingCache struct {
	inner  claim.CodeMapper
	client *redis.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
	log    logging.Logger

	// OnHit and OnMiss are optional metrics hooks.
	OnHit  func()
	OnMiss func()
}

// NewMappingCache wraps inner with a Redis cache.
func NewMappingCache(inner claim.CodeMapper, client *redis.Client, ttl time.Duration, prefix string, log logging.Logger) *MappingCache {
	return &MappingCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    log,
	}
}

// MapCode implements claim.CodeMapper.
func (c *MappingCache) MapCode(ctx context.Context, system, code string) (*claim.Mapping, error) {
	key := fmt.Sprintf("%smapping:%s:%s", c.prefix, system, code)

	if m := c.lookup(ctx, key); m != nil {
		if c.OnHit != nil {
			c.OnHit()
		}
		return m, nil
	}
	if c.OnMiss != nil {
		c.OnMiss()
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		m, err := c.inner.MapCode(ctx, system, code)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*claim.Mapping), nil
}

func (c *MappingCache) lookup(ctx context.Context, key string) *claim.Mapping {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("mapping cache read failed", logging.String("key", key), logging.Err(err))
		}
		return nil
	}

	var cached cachedMapping
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.Warn("mapping cache entry is corrupt, dropping it",
			logging.String("key", key), logging.Err(err))
		c.client.Del(ctx, key)
		return nil
	}
	return &claim.Mapping{Concept: &cached.Concept, Confidence: cached.Confidence}
}

func (c *MappingCache) store(ctx context.Context, key string, m *claim.Mapping) {
	raw, err := json.Marshal(cachedMapping{Concept: *m.Concept, Confidence: m.Confidence})
	if err != nil {
		c.log.Warn("cannot encode mapping for cache", logging.String("key", key), logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("mapping cache write failed", logging.String("key", key), logging.Err(err))
	}
}
