package rules

import (
	"fmt"

	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/reddit"
)

// set of hostnames image and gallery submissions may link to
const imageHostSet = "approved-image-hosts"

var _ engine.PostRuleFunc = ImageHostPostRule

// ImageHostPostRule blocks image and gallery submissions whose URL points at a
// host outside the approved set. Membership is evaluated for real on every
// host; when no approved-image-hosts set was configured the check stands down
// entirely, since which hosts count as safe is deployment data, not code.
func ImageHostPostRule(c *engine.PostContext) error {
	if c.Post.Kind != reddit.PostKindImage && c.Post.Kind != reddit.PostKindGallery {
		return nil
	}
	if c.Post.URL == "" {
		return nil
	}
	if !c.HasSet(imageHostSet) {
		return nil
	}
	host, err := imageHost(c.Post.URL)
	if err != nil || host == "" {
		c.Deny("image link is not a valid URL")
		return nil
	}
	if !c.InSet(imageHostSet, host) {
		c.Deny(fmt.Sprintf("image host %q is not on the approved list", host))
	}
	return nil
}
