package communities

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var profileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_community_profile_cache_hits",
	Help: "Number of community profile lookups served from cache",
})

var profileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_community_profile_cache_misses",
	Help: "Number of community profile lookups which missed cache",
})

var legacyCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_community_legacy_cache_hits",
	Help: "Number of legacy ruleset lookups served from cache",
})

var legacyCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_community_legacy_cache_misses",
	Help: "Number of legacy ruleset lookups which missed cache",
})
