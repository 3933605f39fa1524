package translation_service

import (
	"context"
	"sync"
	"time"
)

// Clock is injected so expiry can be tested without sleeping.
type Clock func() time.Time

// tokenCache holds one inference token until its TTL elapses. It is owned by
// the Client instance, never package-level, so tests cannot leak state into
// each other.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	ttl       time.Duration
	clock     Clock
}

func newTokenCache(ttl time.Duration, clock Clock) *tokenCache {
	if clock == nil {
		clock = time.Now
	}
	return &tokenCache{
		ttl:   ttl,
		clock: clock,
	}
}

// get returns the cached token, fetching a fresh one when none is cached or
// the TTL has elapsed. Fetch failures are returned without touching the
// cached value.
func (c *tokenCache) get(ctx context.Context, fetch func(ctx context.Context) (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}

	token, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresAt = now.Add(c.ttl)
	return token, nil
}

// invalidate drops the cached token so the next get refetches.
func (c *tokenCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
