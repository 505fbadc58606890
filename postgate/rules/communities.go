package rules

import (
	"fmt"

	"github.com/postdeck/gatehouse/postgate/engine"
)

// Community-specific rules, run after the general tier for posts to the
// community they are registered under. Registration lives in DefaultRules.

var _ engine.PostRuleFunc = RequireNSFWPostRule

func RequireNSFWPostRule(c *engine.PostContext) error {
	if !c.Post.NSFW {
		c.Deny(fmt.Sprintf("posts in r/%s must be marked NSFW", c.Community.Name))
	}
	return nil
}

var _ engine.PostRuleFunc = ForbidLinksPostRule

func ForbidLinksPostRule(c *engine.PostContext) error {
	if c.Post.HasLink {
		c.Deny("links are not allowed in this community")
	}
	return nil
}
