// Package tagcache caches facet tag lists in a key-value store. The facet
// query is scoped by only a few criteria fields, so repeated keystroke-free
// browsing (paging, sorting, rating changes) hits the same entry.
package tagcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atshelf/facetsync/internal/db"
	"github.com/atshelf/facetsync/internal/domain/search/criteria"
	"github.com/atshelf/facetsync/internal/metrics"
)

const cacheKeyPrefix = "facetsync:tag_cache:"

// DefaultTTL bounds how stale a cached facet list may get.
const DefaultTTL = 60 * time.Second

// Lister is the facet tag query being decorated.
type Lister interface {
	ListFacetTags(ctx context.Context, crit criteria.Criteria) ([]string, error)
}

// store is the consumer interface for the tag cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedLister caches facet tag lists with a TTL.
type CachedLister struct {
	inner  Lister
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a caching decorator.
func New(inner Lister, s store, ttl time.Duration, logger *zap.Logger) *CachedLister {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLister{inner: inner, store: s, ttl: ttl, logger: logger}
}

// ListFacetTags returns a cached tag list or calls the inner lister.
// Cache failures degrade to the inner call; they are never surfaced.
func (c *CachedLister) ListFacetTags(
	ctx context.Context, crit criteria.Criteria,
) ([]string, error) {
	key := cacheKey(crit)

	if tags, ok := c.getFromCache(ctx, key); ok {
		metrics.TagCacheTotal.WithLabelValues("hit").Inc()
		return tags, nil
	}
	metrics.TagCacheTotal.WithLabelValues("miss").Inc()

	tags, err := c.inner.ListFacetTags(ctx, crit)
	if err != nil {
		return nil, fmt.Errorf("list facet tags: %w", err)
	}

	c.putToCache(ctx, key, tags)
	return tags, nil
}

func cacheKey(crit criteria.Criteria) string {
	h := sha256.Sum256([]byte(crit.FacetKey()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedLister) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached facet tags", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		c.logger.Warn("Failed to parse cached facet tags", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return tags, true
}

func (c *CachedLister) putToCache(ctx context.Context, key string, tags []string) {
	data, err := json.Marshal(tags)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache facet tags", zap.String("key", key), zap.Error(err))
	}
}
