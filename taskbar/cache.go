package taskbar

import "time"

// DefaultRefresh is how long a cached enumeration stays valid.
const DefaultRefresh = 5 * time.Second

// Cache wraps an Enumerator and reuses its last result until it is older
// than the refresh interval. It is not safe for concurrent use; the poller
// owns it.
type Cache struct {
	src     Enumerator
	refresh time.Duration
	now     func() time.Time

	handles   []Handle
	refreshed time.Time
	primed    bool
}

// NewCache returns a cache in front of src.
func NewCache(src Enumerator, refresh time.Duration) *Cache {
	return &Cache{src: src, refresh: refresh, now: time.Now}
}

// Find returns the cached handles, re-enumerating when they are stale.
func (c *Cache) Find() []Handle {
	now := c.now()
	if c.primed && now.Sub(c.refreshed) < c.refresh {
		return c.handles
	}
	c.handles = c.src.Find()
	c.refreshed = now
	c.primed = true
	return c.handles
}
