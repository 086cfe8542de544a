package agrohub

import (
	"context"
	"strings"
	"sync"

	"github.com/meskel/agroclimate-mcp/internal/domain"
)

// RegionLister is the region-fetch capability the resolver consumes.
type RegionLister interface {
	Regions(ctx context.Context) ([]domain.Region, error)
}

// RegionMatch decides whether a region is the one this deployment serves.
type RegionMatch func(domain.Region) bool

// MatchNameOrISO2 matches by exact ISO-2 code or case-insensitive name
// substring. "ET" and "ethiopia" both resolve the same deployment.
func MatchNameOrISO2(query string) RegionMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(r domain.Region) bool {
		if strings.ToLower(r.ISO2) == q {
			return true
		}
		return q != "" && strings.Contains(strings.ToLower(r.Name), q)
	}
}

// RegionResolver resolves the deployment's region once and caches it for the
// process lifetime. Regions do not change while a process runs, so a
// successful resolution is never refetched. A not-found outcome is reported
// as ErrRegionUnavailable and is not cached, so a later upstream fix heals
// the deployment without a restart.
type RegionResolver struct {
	regions RegionLister
	match   RegionMatch

	mu       sync.Mutex
	region   domain.Region
	resolved bool
}

// NewRegionResolver creates a resolver for the given match predicate.
func NewRegionResolver(regions RegionLister, match RegionMatch) *RegionResolver {
	return &RegionResolver{regions: regions, match: match}
}

// Resolve returns the deployment region, fetching the upstream region list on
// first use. The lock is not held across the fetch; two concurrent first
// calls may both fetch and the last write wins, which is harmless because the
// resolved value is idempotent.
func (r *RegionResolver) Resolve(ctx context.Context) (domain.Region, error) {
	r.mu.Lock()
	if r.resolved {
		region := r.region
		r.mu.Unlock()
		return region, nil
	}
	r.mu.Unlock()

	regions, err := r.regions.Regions(ctx)
	if err != nil {
		return domain.Region{}, err
	}

	for _, region := range regions {
		if r.match(region) {
			r.mu.Lock()
			r.region = region
			r.resolved = true
			r.mu.Unlock()
			return region, nil
		}
	}
	return domain.Region{}, ErrRegionUnavailable
}

// Resolved reports whether a region has been resolved yet. Used by the
// readiness probe.
func (r *RegionResolver) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}
