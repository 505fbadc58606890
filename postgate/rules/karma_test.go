package rules

import (
	"testing"

	"github.com/postdeck/gatehouse/postgate/engine"

	"github.com/stretchr/testify/assert"
)

func TestMinKarmaPostRule(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	post := engine.PostMeta{Title: "observations after a decade"}

	pc1 := postContext(t, &eng, engine.AccountMeta{Username: "lurker", Karma: 40}, "seasoned", post)
	assert.NoError(MinKarmaPostRule(&pc1))
	assert.Equal([]string{"this community requires at least 100 karma"}, engine.ExtractEffects(&pc1.BaseContext).Reasons)

	// exactly at the floor passes
	pc2 := postContext(t, &eng, engine.AccountMeta{Username: "veteran", Karma: 100}, "seasoned", post)
	assert.NoError(MinKarmaPostRule(&pc2))
	assert.Empty(engine.ExtractEffects(&pc2.BaseContext).Reasons)

	// unknown karma hydrates as zero, and zero is below the floor
	pc3 := postContext(t, &eng, engine.AccountMeta{Username: "mystery"}, "seasoned", post)
	assert.NoError(MinKarmaPostRule(&pc3))
	assert.NotEmpty(engine.ExtractEffects(&pc3.BaseContext).Reasons)

	// no floor configured
	pc4 := postContext(t, &eng, engine.AccountMeta{Username: "lurker", Karma: 0}, "gatetest", post)
	assert.NoError(MinKarmaPostRule(&pc4))
	assert.Empty(engine.ExtractEffects(&pc4.BaseContext).Reasons)
}

func TestMinAccountAgePostRule(t *testing.T) {
	assert := assert.New(t)

	eng := engineFixture()
	post := engine.PostMeta{Title: "checking in"}

	young := 10
	pc1 := postContext(t, &eng, engine.AccountMeta{Username: "fresh", Karma: 500, AccountAgeDays: &young}, "seasoned", post)
	assert.NoError(MinAccountAgePostRule(&pc1))
	assert.Equal([]string{"account must be at least 30 days old to post here"}, engine.ExtractEffects(&pc1.BaseContext).Reasons)

	old := 30
	pc2 := postContext(t, &eng, engine.AccountMeta{Username: "longtimer", Karma: 500, AccountAgeDays: &old}, "seasoned", post)
	assert.NoError(MinAccountAgePostRule(&pc2))
	assert.Empty(engine.ExtractEffects(&pc2.BaseContext).Reasons)

	// unknown age counts as zero days, same stance as unknown karma
	pc3 := postContext(t, &eng, engine.AccountMeta{Username: "mystery", Karma: 500}, "seasoned", post)
	assert.NoError(MinAccountAgePostRule(&pc3))
	assert.NotEmpty(engine.ExtractEffects(&pc3.BaseContext).Reasons)
}
