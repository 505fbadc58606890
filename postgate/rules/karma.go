package rules

import (
	"fmt"

	"github.com/postdeck/gatehouse/postgate/engine"
)

var _ engine.PostRuleFunc = MinKarmaPostRule
var _ engine.PostRuleFunc = MinAccountAgePostRule

// Unknown karma counts as zero: a hydration gap must never open a door that
// a real value would close.
func MinKarmaPostRule(c *engine.PostContext) error {
	floor := c.Community.MinKarma()
	if floor == nil {
		return nil
	}
	if c.Account.Karma < *floor {
		c.Deny(fmt.Sprintf("this community requires at least %d karma", *floor))
	}
	return nil
}

// Same stance for account age: nil means unknown, which counts as zero days.
func MinAccountAgePostRule(c *engine.PostContext) error {
	floor := c.Community.MinAccountAgeDays()
	if floor == nil {
		return nil
	}
	age := 0
	if c.Account.AccountAgeDays != nil {
		age = *c.Account.AccountAgeDays
	}
	if age < *floor {
		c.Deny(fmt.Sprintf("account must be at least %d days old to post here", *floor))
	}
	return nil
}
