package rules

import (
	"github.com/postdeck/gatehouse/postgate/engine"
)

var _ engine.PostRuleFunc = VerificationRequiredPostRule

// blocks unverified accounts from communities that demand verification,
// regardless of karma or any other passing signal
func VerificationRequiredPostRule(c *engine.PostContext) error {
	if c.Community.VerificationRequired() && !c.Account.Verified {
		c.Deny("this community requires a verified account")
	}
	return nil
}
