package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLSource reports the session TTL in seconds; nil means no session.
type TTLSource interface {
	TTL(ctx context.Context, allowAnonymous bool) (*int, error)
}

// ExpirationCache remembers the session expiration for one refresh epoch.
// Polls sharing a refresh id reuse one TTL request; a new refresh id starts
// a fresh one.
type ExpirationCache struct {
	source TTLSource
	now    func() time.Time
	group  singleflight.Group

	mu         sync.Mutex
	key        string
	resolved   bool
	expiration *time.Time
}

// NewExpirationCache creates a cache backed by source.
func NewExpirationCache(source TTLSource, now func() time.Time) *ExpirationCache {
	if now == nil {
		now = time.Now
	}
	return &ExpirationCache{source: source, now: now}
}

// Expiration returns the session expiration for refreshID. legacy, when set,
// is the legacy keep-alive expiration; the earlier of the two wins. Legacy
// values already in the past are ignored.
func (c *ExpirationCache) Expiration(ctx context.Context, refreshID string, allowAnonymous bool, legacy *time.Time) (*time.Time, error) {
	key := refreshID + "|" + strconv.FormatBool(allowAnonymous)
	c.mu.Lock()
	if c.key != key {
		c.key = key
		c.resolved = false
		c.expiration = nil
	}
	resolved, expiration := c.resolved, c.expiration
	c.mu.Unlock()

	if !resolved {
		value, err, _ := c.group.Do(key, func() (interface{}, error) {
			ttl, err := c.source.TTL(ctx, allowAnonymous)
			if err != nil {
				return nil, err
			}
			var ret *time.Time
			if ttl != nil {
				at := c.now().Add(time.Duration(*ttl) * time.Second)
				ret = &at
			}
			c.mu.Lock()
			if c.key == key {
				c.resolved = true
				c.expiration = ret
			}
			c.mu.Unlock()
			return ret, nil
		})
		if err != nil {
			return nil, err
		}
		expiration = value.(*time.Time)
	}
	return merge(expiration, legacy, c.now()), nil
}

// Invalidate drops the cached expiration.
func (c *ExpirationCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
	c.resolved = false
	c.expiration = nil
}

func merge(expiration, legacy *time.Time, now time.Time) *time.Time {
	if expiration == nil || legacy == nil || !legacy.After(now) {
		return expiration
	}
	if legacy.Before(*expiration) {
		return legacy
	}
	return expiration
}
