package spotify

import (
	"context"
	"sync"
	"time"
)

// expirySlack refreshes the token slightly before the catalog would reject
// it, so in-flight requests never carry a token about to lapse.
const expirySlack = 30 * time.Second

// tokenCache holds the process-wide client-credentials bearer token. All
// reads and refreshes happen under one mutex, so concurrent requests near
// expiry trigger a single refresh.
type tokenCache struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

// getOrRefresh returns the cached token, calling fetch under the lock when
// the cache is empty or within expirySlack of expiry.
func (c *tokenCache) getOrRefresh(ctx context.Context, fetch func(context.Context) (string, time.Duration, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expires.Add(-expirySlack)) {
		return c.token, nil
	}

	token, ttl, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expires = time.Now().Add(ttl)
	return token, nil
}

// invalidate drops the cached token. Called when the catalog answers 401,
// which means the token died before its advertised expiry.
func (c *tokenCache) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
