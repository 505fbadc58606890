package rules

import (
	"slices"

	"github.com/postdeck/gatehouse/postgate/engine"
)

// account flag set by the sweep when a shadowban check comes back positive
const FlagShadowbanSuspected = "shadowban-suspected"

var _ engine.AccountRuleFunc = ShadowbanFlagAccountRule

// ShadowbanFlagAccountRule keeps the shadowban-suspected flag in sync with the
// most recent detector report. Inconclusive reports (listing errors, empty
// history) leave the flag untouched rather than flapping it.
func ShadowbanFlagAccountRule(c *engine.AccountContext) error {
	if c.Shadowban == nil || !c.Shadowban.Conclusive() {
		return nil
	}
	if c.Shadowban.IsShadowbanned {
		c.AddAccountFlag(FlagShadowbanSuspected)
	} else {
		c.RemoveAccountFlag(FlagShadowbanSuspected)
	}
	return nil
}

var _ engine.PostRuleFunc = ShadowbanWarningPostRule

// ShadowbanWarningPostRule surfaces a non-blocking warning on posts from
// accounts the sweep has flagged. The account can still post; the warning
// tells them their submissions may not be visible to anyone else.
func ShadowbanWarningPostRule(c *engine.PostContext) error {
	if slices.Contains(c.Account.AccountFlags, FlagShadowbanSuspected) {
		c.Warn("account may be shadowbanned: posts might not be publicly visible")
	}
	return nil
}
