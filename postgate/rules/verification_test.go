package rules

import (
	"testing"

	"github.com/postdeck/gatehouse/postgate/engine"

	"github.com/stretchr/testify/assert"
)

func TestVerificationRequiredPostRule(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	post := engine.PostMeta{Title: "intro thread"}

	// high karma does not substitute for verification
	acct := engine.AccountMeta{Username: "newkid", Karma: 50000}
	pc1 := postContext(t, &eng, acct, "verifiedonly", post)
	assert.NoError(VerificationRequiredPostRule(&pc1))
	assert.Equal([]string{"this community requires a verified account"}, engine.ExtractEffects(&pc1.BaseContext).Reasons)

	acct.Verified = true
	pc2 := postContext(t, &eng, acct, "verifiedonly", post)
	assert.NoError(VerificationRequiredPostRule(&pc2))
	assert.Empty(engine.ExtractEffects(&pc2.BaseContext).Reasons)

	// communities without the requirement ignore verification state
	pc3 := postContext(t, &eng, engine.AccountMeta{Username: "newkid"}, "gatetest", post)
	assert.NoError(VerificationRequiredPostRule(&pc3))
	assert.Empty(engine.ExtractEffects(&pc3.BaseContext).Reasons)
}
