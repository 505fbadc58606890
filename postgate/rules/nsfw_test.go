package rules

import (
	"testing"

	"github.com/postdeck/gatehouse/postgate/engine"

	"github.com/stretchr/testify/assert"
)

func TestNSFWMarkerPostRule(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	acct := engine.AccountMeta{Username: "poster"}

	pc1 := postContext(t, &eng, acct, "afterdark", engine.PostMeta{Title: "last night"})
	assert.NoError(NSFWMarkerPostRule(&pc1))
	assert.Equal([]string{"posts in this community must be marked NSFW"}, engine.ExtractEffects(&pc1.BaseContext).Reasons)

	pc2 := postContext(t, &eng, acct, "afterdark", engine.PostMeta{Title: "last night", NSFW: true})
	assert.NoError(NSFWMarkerPostRule(&pc2))
	assert.Empty(engine.ExtractEffects(&pc2.BaseContext).Reasons)

	// communities without the mandate accept either marking
	pc3 := postContext(t, &eng, acct, "gatetest", engine.PostMeta{Title: "last night"})
	assert.NoError(NSFWMarkerPostRule(&pc3))
	assert.Empty(engine.ExtractEffects(&pc3.BaseContext).Reasons)
}
