package agrohub

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/meskel/agroclimate-mcp/internal/domain"
	"github.com/meskel/agroclimate-mcp/internal/observability"
)

// StationLister is the station-fetch capability the cache decorates.
type StationLister interface {
	ListStations(ctx context.Context, regionID int) ([]domain.Station, error)
}

// CachedStations wraps a StationLister with a per-region TTL cache. Expiry is
// strictly time-based; a cached list is never invalidated by content. Fetch
// errors propagate uncached: serving a stale or empty directory is worse than
// failing the request.
type CachedStations struct {
	inner StationLister
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[int]stationCacheEntry

	metrics *observability.Metrics
}

type stationCacheEntry struct {
	stations  []domain.Station
	fetchedAt time.Time
}

// NewCachedStations creates a TTL cache decorator around a station source.
// The clock is injected so tests can cross expiry boundaries deterministically.
func NewCachedStations(inner StationLister, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedStations {
	return &CachedStations{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[int]stationCacheEntry),
		metrics: metrics,
	}
}

// ListStations returns the cached list while it is fresh, otherwise fetches
// and replaces the entry wholesale. The lock is not held across the fetch:
// two concurrent misses may both fetch and the last write wins, which is
// acceptable because the values are idempotent and the TTL bounds the waste.
func (c *CachedStations) ListStations(ctx context.Context, regionID int) ([]domain.Station, error) {
	c.mu.RLock()
	entry, ok := c.entries[regionID]
	c.mu.RUnlock()

	if ok && c.clock.Since(entry.fetchedAt) < c.ttl {
		c.metrics.StationCache.WithLabelValues("hit").Inc()
		return entry.stations, nil
	}
	c.metrics.StationCache.WithLabelValues("miss").Inc()

	stations, err := c.inner.ListStations(ctx, regionID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[regionID] = stationCacheEntry{stations: stations, fetchedAt: c.clock.Now()}
	c.mu.Unlock()

	return stations, nil
}
