package rules

import (
	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/engine"
)

var _ engine.PostRuleFunc = PromotionLinkPostRule

// enforces the community's promotion policy against outbound links: a
// disallowed policy blocks any http(s) link or bare "www." reference in the
// body or URL, a limited policy allows a single link
func PromotionLinkPostRule(c *engine.PostContext) error {
	switch c.Community.PromotionPolicy() {
	case communities.PromotionDisallowed:
		if c.Post.HasLink {
			c.Deny("promotion is not allowed in this community: remove external links")
		}
	case communities.PromotionLimited:
		if countLinks(c) > 1 {
			c.Deny("this community allows at most one external link per post")
		}
	}
	return nil
}
