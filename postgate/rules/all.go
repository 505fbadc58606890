package rules

import (
	"github.com/postdeck/gatehouse/postgate/engine"
)

func DefaultRules() engine.RuleSet {
	rules := engine.RuleSet{
		AccountRules: []engine.AccountRuleFunc{
			ShadowbanFlagAccountRule,
		},
		PostRules: []engine.PostRuleFunc{
			ShadowbanWarningPostRule,
			VerificationRequiredPostRule,
			MinKarmaPostRule,
			MinAccountAgePostRule,
			PromotionLinkPostRule,
			NSFWMarkerPostRule,
			ImageHostPostRule,
		},
		CommunityPostRules: map[string][]engine.PostRuleFunc{
			"gonewild":    {RequireNSFWPostRule},
			"confessions": {ForbidLinksPostRule},
		},
	}
	return rules
}
