package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/cachestore"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/flagstore"
	"github.com/postdeck/gatehouse/postgate/histstore"
	"github.com/postdeck/gatehouse/postgate/pacing"
	"github.com/postdeck/gatehouse/postgate/setstore"
)

var _ PostRuleFunc = simpleRule

func simpleRule(c *PostContext) error {
	if c.InSet("banned-phrases", strings.ToLower(c.Post.Title)) {
		c.Deny("title contains a banned phrase")
	}
	return nil
}

// EngineTestFixture returns an engine wired entirely to in-memory backends,
// with one community profile ("gatetest") and one simple rule registered.
// Intentionally exported, for use in other packages' tests.
func EngineTestFixture() Engine {
	rules := RuleSet{
		PostRules: []PostRuleFunc{
			simpleRule,
		},
	}
	cache := cachestore.NewMemCacheStore(10, time.Hour)
	flags := flagstore.NewMemFlagStore()
	sets := setstore.NewMemSetStore()
	sets.Add("banned-phrases", "free money")
	hist := histstore.NewMemHistStore()
	counters := countstore.NewMemCountStore()
	logger := slog.Default()

	dir := communities.NewMockDirectory()
	cooldown := 60
	dir.Insert(communities.Profile{
		Name:            "gatetest",
		PromotionPolicy: communities.PromotionLimited,
		CooldownMinutes: &cooldown,
	})

	engine := Engine{
		Logger:    logger,
		Directory: dir,
		Rules:     rules,
		Pacing:    pacing.NewTracker(hist, counters, logger),
		History:   hist,
		Counters:  counters,
		Sets:      sets,
		Cache:     cache,
		Flags:     flags,
	}
	return engine
}

// Helper to access the private effects field from a context. Intended for use
// in test code, *not* from rules.
func ExtractEffects(c *BaseContext) *Effects {
	return c.effects
}
