package rules

import (
	"fmt"
	"testing"

	"github.com/postdeck/gatehouse/postgate/engine"
	"github.com/postdeck/gatehouse/reddit"

	"github.com/stretchr/testify/assert"
)

func TestImageHostPostRule(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	acct := engine.AccountMeta{Username: "poster"}

	pc1 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "https://i.imgur.com/abc123.jpg",
		Kind:  reddit.PostKindImage,
	})
	assert.NoError(ImageHostPostRule(&pc1))
	assert.Empty(engine.ExtractEffects(&pc1.BaseContext).Reasons)

	pc2 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "https://sketchy.example/abc123.jpg",
		Kind:  reddit.PostKindImage,
	})
	assert.NoError(ImageHostPostRule(&pc2))
	assert.Equal([]string{fmt.Sprintf("image host %q is not on the approved list", "sketchy.example")}, engine.ExtractEffects(&pc2.BaseContext).Reasons)

	// a lookalike subdomain of an approved host is still a different host
	pc3 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "https://i.imgur.com.evil.example/abc123.jpg",
		Kind:  reddit.PostKindGallery,
	})
	assert.NoError(ImageHostPostRule(&pc3))
	assert.NotEmpty(engine.ExtractEffects(&pc3.BaseContext).Reasons)
}

func TestImageHostPostRuleUnconfiguredSet(t *testing.T) {
	assert := assert.New(t)

	// deployment without an approved-image-hosts set: the check stands down
	eng := engine.EngineTestFixture()
	acct := engine.AccountMeta{Username: "poster"}

	pc := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "https://sketchy.example/abc123.jpg",
		Kind:  reddit.PostKindImage,
	})
	assert.NoError(ImageHostPostRule(&pc))
	assert.Empty(engine.ExtractEffects(&pc.BaseContext).Reasons)
}

func TestImageHostPostRuleNormalizesHost(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	acct := engine.AccountMeta{Username: "poster"}

	// schemeless and www-prefixed forms resolve to the approved host
	pc := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "www.i.redd.it/abc123.jpg",
		Kind:  reddit.PostKindImage,
	})
	assert.NoError(ImageHostPostRule(&pc))
	assert.Empty(engine.ExtractEffects(&pc.BaseContext).Reasons)
}

func TestImageHostPostRuleRejectsUnparseable(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	acct := engine.AccountMeta{Username: "poster"}

	pc := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "caturday",
		URL:   "https://bad host.example/abc123.jpg",
		Kind:  reddit.PostKindImage,
	})
	assert.NoError(ImageHostPostRule(&pc))
	assert.Equal([]string{"image link is not a valid URL"}, engine.ExtractEffects(&pc.BaseContext).Reasons)
}

func TestImageHostPostRuleIgnoresOtherKinds(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	acct := engine.AccountMeta{Username: "poster"}

	// self and plain link posts are out of scope for the image host check
	pc1 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "discussion",
		Body:  "saw this on https://sketchy.example/abc123.jpg",
		Kind:  reddit.PostKindSelf,
	})
	assert.NoError(ImageHostPostRule(&pc1))
	assert.Empty(engine.ExtractEffects(&pc1.BaseContext).Reasons)

	pc2 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{
		Title: "article",
		URL:   "https://sketchy.example/post",
		Kind:  reddit.PostKindLink,
	})
	assert.NoError(ImageHostPostRule(&pc2))
	assert.Empty(engine.ExtractEffects(&pc2.BaseContext).Reasons)
}
