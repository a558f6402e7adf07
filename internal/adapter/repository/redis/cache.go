// Package redis caches snapshots in front of another store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gofinance/internal/adapter/repository/snapshot"
	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

const keyPrefix = "snapshot:"

// CacheObserver is notified of cache hits and misses.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

type nopObserver struct{}

func (nopObserver) CacheHit()  {}
func (nopObserver) CacheMiss() {}

// CachedStore is a read-through, write-through cache over a usecase.SnapshotStore.
// Redis failures are logged and never fail a load or save.
type CachedStore struct {
	next     usecase.SnapshotStore
	client   *redis.Client
	ttl      time.Duration
	observer CacheObserver
	logger   zerolog.Logger
}

// NewCachedStore wraps next. A nil observer disables hit/miss reporting.
func NewCachedStore(next usecase.SnapshotStore, client *redis.Client, ttl time.Duration, observer CacheObserver, logger zerolog.Logger) *CachedStore {
	if observer == nil {
		observer = nopObserver{}
	}
	return &CachedStore{
		next:     next,
		client:   client,
		ttl:      ttl,
		observer: observer,
		logger:   logger,
	}
}

// Load serves the snapshot from Redis when present, else from the wrapped store.
func (c *CachedStore) Load(ctx context.Context, login string) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, keyPrefix+login).Bytes()
	switch {
	case err == nil:
		snap, decErr := decode(data)
		if decErr == nil {
			c.observer.CacheHit()
			return snap, nil
		}
		c.logger.Warn().Err(decErr).Str("login", login).Msg("dropping corrupt cache entry")
		c.invalidate(ctx, login)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("login", login).Msg("cache read failed")
	}

	c.observer.CacheMiss()

	snap, err := c.next.Load(ctx, login)
	if err != nil {
		return nil, err
	}

	c.put(ctx, snap)

	return snap, nil
}

// Save writes to the wrapped store first, then refreshes the cache.
func (c *CachedStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := c.next.Save(ctx, snap); err != nil {
		c.invalidate(ctx, snap.Login)
		return err
	}

	c.put(ctx, snap)

	return nil
}

// ListCredentials is not cached.
func (c *CachedStore) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	return c.next.ListCredentials(ctx)
}

func (c *CachedStore) put(ctx context.Context, snap *domain.Snapshot) {
	data, err := json.Marshal(snapshot.FromSnapshot(snap))
	if err != nil {
		c.logger.Warn().Err(err).Str("login", snap.Login).Msg("cache encode failed")
		return
	}

	if err := c.client.Set(ctx, keyPrefix+snap.Login, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("login", snap.Login).Msg("cache write failed")
		c.invalidate(ctx, snap.Login)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, login string) {
	if err := c.client.Del(ctx, keyPrefix+login).Err(); err != nil {
		c.logger.Warn().Err(err).Str("login", login).Msg("cache invalidation failed")
	}
}

func decode(data []byte) (*domain.Snapshot, error) {
	var rec snapshot.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.ToSnapshot()
}
