package communities

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedDirectory wraps another Directory with in-process TTL caches.
//
// "No profile exists" is the common case for long-tail communities, so nil
// results are cached too (negative caching); errors are cached with their own
// shorter TTL so a flapping database doesn't get hammered.
type CachedDirectory struct {
	Inner  Directory
	ErrTTL time.Duration

	profileCache *expirable.LRU[string, profileEntry]
	legacyCache  *expirable.LRU[string, legacyEntry]
}

type profileEntry struct {
	Updated time.Time
	Profile *Profile
	Err     error
}

type legacyEntry struct {
	Updated time.Time
	Rules   *LegacyRuleSet
	Err     error
}

var _ Directory = (*CachedDirectory)(nil)

// Capacity of zero means unlimited size; hitTTL of zero means entries never
// expire.
func NewCachedDirectory(inner Directory, capacity int, hitTTL, errTTL time.Duration) *CachedDirectory {
	return &CachedDirectory{
		Inner:        inner,
		ErrTTL:       errTTL,
		profileCache: expirable.NewLRU[string, profileEntry](capacity, nil, hitTTL),
		legacyCache:  expirable.NewLRU[string, legacyEntry](capacity, nil, hitTTL),
	}
}

func (d *CachedDirectory) isProfileStale(e *profileEntry) bool {
	return e.Err != nil && time.Since(e.Updated) > d.ErrTTL
}

func (d *CachedDirectory) isLegacyStale(e *legacyEntry) bool {
	return e.Err != nil && time.Since(e.Updated) > d.ErrTTL
}

func (d *CachedDirectory) Lookup(ctx context.Context, name string) (*Profile, error) {
	entry, ok := d.profileCache.Get(name)
	if ok && !d.isProfileStale(&entry) {
		profileCacheHits.Inc()
		return entry.Profile, entry.Err
	}
	profileCacheMisses.Inc()

	profile, err := d.Inner.Lookup(ctx, name)
	d.profileCache.Add(name, profileEntry{
		Updated: time.Now(),
		Profile: profile,
		Err:     err,
	})
	return profile, err
}

func (d *CachedDirectory) LookupLegacy(ctx context.Context, name string) (*LegacyRuleSet, error) {
	entry, ok := d.legacyCache.Get(name)
	if ok && !d.isLegacyStale(&entry) {
		legacyCacheHits.Inc()
		return entry.Rules, entry.Err
	}
	legacyCacheMisses.Inc()

	rules, err := d.Inner.LookupLegacy(ctx, name)
	d.legacyCache.Add(name, legacyEntry{
		Updated: time.Now(),
		Rules:   rules,
		Err:     err,
	})
	return rules, err
}

// Purge drops any cached state for a community, eg after an admin rule update.
func (d *CachedDirectory) Purge(ctx context.Context, name string) {
	d.profileCache.Remove(name)
	d.legacyCache.Remove(name)
}
