package rules

import (
	"github.com/postdeck/gatehouse/postgate/engine"
)

var _ engine.PostRuleFunc = NSFWMarkerPostRule

func NSFWMarkerPostRule(c *engine.PostContext) error {
	if c.Community.NSFWRequired() && !c.Post.NSFW {
		c.Deny("posts in this community must be marked NSFW")
	}
	return nil
}
