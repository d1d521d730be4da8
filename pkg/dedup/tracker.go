package dedup

import (
	"github.com/jellydator/ttlcache/v3"
	"time"
)

// Tracker remembers which listings already had a transfer dispatched.
// Entries expire unconditionally after the release delay; expiry is the
// only way an entry is removed, there is no acknowledgment path.
type Tracker struct {
	cache *ttlcache.Cache[string, bool]
}

func NewTracker(releaseDelay time.Duration) *Tracker {
	cache := ttlcache.New[string, bool](
		ttlcache.WithTTL[string, bool](releaseDelay),
		ttlcache.WithDisableTouchOnHit[string, bool]())
	return &Tracker{
		cache: cache,
	}
}

// Start runs the cache's expiration loop so released entries are
// collected without waiting for the next read.
func (t *Tracker) Start() {
	go t.cache.Start()
}

func (t *Tracker) Stop() {
	t.cache.Stop()
}

func (t *Tracker) MarkDispatched(listingID string) {
	t.cache.Set(listingID, true, ttlcache.DefaultTTL)
}

func (t *Tracker) IsDispatched(listingID string) bool {
	entry := t.cache.Get(listingID)
	return entry != nil && !entry.IsExpired()
}

func (t *Tracker) Len() int {
	return t.cache.Len()
}
