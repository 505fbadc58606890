package rules

import (
	"context"
	"testing"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/postgate/setstore"
)

func engineFixture() engine.Engine {
	eng := engine.EngineTestFixture()
	eng.Rules = DefaultRules()

	minKarma := 100
	minAge := 30
	dir := eng.Directory.(*communities.MockDirectory)
	dir.Insert(communities.Profile{
		Name:                 "verifiedonly",
		VerificationRequired: true,
		MinKarma:             &minKarma,
	})
	dir.Insert(communities.Profile{
		Name:              "seasoned",
		MinKarma:          &minKarma,
		MinAccountAgeDays: &minAge,
	})
	dir.Insert(communities.Profile{
		Name:            "noselfpromo",
		PromotionPolicy: communities.PromotionDisallowed,
	})
	dir.Insert(communities.Profile{
		Name:         "afterdark",
		NSFWRequired: true,
	})
	dir.InsertLegacy(communities.LegacyRuleSet{
		Name:       "oldschool",
		LinkPolicy: communities.LinkPolicyNone,
	})

	eng.Sets.(*setstore.MemSetStore).Add("approved-image-hosts", "i.imgur.com", "i.redd.it")
	return eng
}

// resolves community rules through the directory and wraps everything in a
// post context, the way the engine does before rule execution
func postContext(t *testing.T, eng *engine.Engine, acct engine.AccountMeta, community string, post engine.PostMeta) engine.PostContext {
	t.Helper()
	cmeta, err := eng.GetCommunityMeta(context.Background(), community)
	if err != nil {
		t.Fatalf("resolving community %q: %v", community, err)
	}
	return engine.NewPostContext(context.Background(), eng, acct, *cmeta, post)
}
