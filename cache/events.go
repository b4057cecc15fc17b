// Package cache keeps recently served events in Redis so repeated by-slug
// reads skip the database. With no Redis client every call passes through.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"devevent/database"
	"devevent/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "devevent:event:slug:"

// EventSource is the store the cache sits in front of.
type EventSource interface {
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	FindWhere(ctx context.Context, criteria database.EventCriteria) ([]model.Event, error)
}

type EventCache struct {
	next   EventSource
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewEventCache(next EventSource, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *EventCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &EventCache{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

func (c *EventCache) Enabled() bool {
	return c.rdb != nil
}

// FindBySlug serves from Redis when possible. Redis failures are logged and
// fall through to the store; absence is not cached.
func (c *EventCache) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	if !c.Enabled() {
		return c.next.FindBySlug(ctx, slug)
	}

	bs, err := c.rdb.Get(ctx, Key(slug)).Bytes()
	if err == nil {
		var event model.Event
		if jsonErr := json.Unmarshal(bs, &event); jsonErr == nil {
			return &event, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	event, err := c.next.FindBySlug(ctx, slug)
	if err != nil || event == nil {
		return event, err
	}
	if payload, jsonErr := json.Marshal(event); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, Key(slug), payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("cache write failed", zap.String("slug", slug), zap.Error(setErr))
		}
	}
	return event, nil
}

// FindWhere is never cached.
func (c *EventCache) FindWhere(ctx context.Context, criteria database.EventCriteria) ([]model.Event, error) {
	return c.next.FindWhere(ctx, criteria)
}

// Invalidate drops the cached copies of slugs after a write. A renamed event
// passes both its old and new slug.
func (c *EventCache) Invalidate(ctx context.Context, slugs ...string) {
	if !c.Enabled() {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, Key(slug))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

func Key(slug string) string {
	return keyPrefix + slug
}
