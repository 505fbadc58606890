package safety

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/postdeck/gatehouse/communities"
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/engine"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	assert := assert.New(t)

	// stable across calls, sensitive to both fields
	assert.Equal(ContentHash("title", "body"), ContentHash("title", "body"))
	assert.NotEqual(ContentHash("title", "body"), ContentHash("title", "other"))
	assert.NotEqual(ContentHash("title", "body"), ContentHash("other", "body"))
	assert.Len(ContentHash("title", "body"), 16)
}

func TestCheckerDuplicateDetection(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewChecker(countstore.NewMemCountStore(), slog.Default())

	title, body := "my story", "it was a dark and stormy night"

	f, err := c.PerformSafetyCheck(ctx, "writer", "gatetest", title, body)
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Empty(f.Issues)
	assert.Empty(f.Warnings)
	assert.Equal(0, f.PostsInWindow)

	assert.NoError(c.RecordPost(ctx, "writer", "gatetest", title, body))
	assert.NoError(c.RecordForDuplicateDetection(ctx, "writer", title, body))

	// identical content to the same community blocks
	f, err = c.PerformSafetyCheck(ctx, "writer", "gatetest", title, body)
	assert.NoError(err)
	assert.False(f.CanPost)
	assert.Equal([]string{"duplicate post: identical content already submitted to r/gatetest in the last 24 hours"}, f.Issues)
	assert.Equal(1, f.PostsInWindow)

	// the same content aimed somewhere else is not a blocking duplicate
	f, err = c.PerformSafetyCheck(ctx, "writer", "elsewhere", title, body)
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Empty(f.Issues)

	// different content is clean everywhere
	f, err = c.PerformSafetyCheck(ctx, "writer", "gatetest", "fresh take", "entirely new words")
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Empty(f.Issues)

	// and other users are unaffected
	f, err = c.PerformSafetyCheck(ctx, "someoneelse", "gatetest", title, body)
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Equal(0, f.PostsInWindow)
}

func TestCheckerCrossCommunitySpread(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewChecker(countstore.NewMemCountStore(), slog.Default())

	title, body := "big announcement", "the same pitch everywhere"
	for _, community := range []string{"one", "two"} {
		assert.NoError(c.RecordPost(ctx, "promoter", community, title, body))
		assert.NoError(c.RecordForDuplicateDetection(ctx, "promoter", title, body))
	}

	// two communities already hit: spray warning, but no block for a third
	f, err := c.PerformSafetyCheck(ctx, "promoter", "three", title, body)
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Contains(f.Warnings, "identical content posted to 2 communities in the last 24 hours")

	assert.NoError(c.RecordPost(ctx, "promoter", "three", title, body))
	assert.NoError(c.RecordForDuplicateDetection(ctx, "promoter", title, body))

	// the third submission pushes the repeat tally over its threshold too
	f, err = c.PerformSafetyCheck(ctx, "promoter", "four", title, body)
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Contains(f.Warnings, "identical content posted to 3 communities in the last 24 hours")
	assert.Contains(f.Warnings, "this content has been submitted 3 times in the last 24 hours")
}

func TestCheckerBurstMarker(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewChecker(countstore.NewMemCountStore(), slog.Default())

	// stay inside the burst window limit: no rapid-fire warning
	for i := 0; i < DefaultBurstLimit; i++ {
		assert.NoError(c.RecordPost(ctx, "chatty", "gatetest", fmt.Sprintf("post %d", i), "body"))
	}
	f, err := c.PerformSafetyCheck(ctx, "chatty", "gatetest", "one more", "body")
	assert.NoError(err)
	assert.Empty(f.Warnings)
	assert.Equal(DefaultBurstLimit, f.PostsInWindow)

	// one past the limit trips the marker
	assert.NoError(c.RecordPost(ctx, "chatty", "gatetest", "post 3", "body"))
	f, err = c.PerformSafetyCheck(ctx, "chatty", "gatetest", "one more", "body")
	assert.NoError(err)
	assert.True(f.CanPost)
	assert.Contains(f.Warnings, "unusually rapid posting detected: slow down between submissions")

	// other users keep their own window
	f, err = c.PerformSafetyCheck(ctx, "quiet", "gatetest", "hello", "body")
	assert.NoError(err)
	assert.Empty(f.Warnings)
}

func TestCheckerWithEngine(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engine.EngineTestFixture()
	eng.Safety = NewChecker(eng.Counters, eng.Logger)

	// no cooldown on this community, so the duplicate finding stands alone
	dir := eng.Directory.(*communities.MockDirectory)
	dir.Insert(communities.Profile{Name: "stories", PromotionPolicy: communities.PromotionAllowed})

	post := engine.PostMeta{Title: "my story", Body: "it was a dark and stormy night"}
	dec := eng.CheckPost(ctx, "writer", "stories", post)
	assert.True(dec.CanPost)

	assert.NoError(eng.RecordPost(ctx, "writer", "stories", post.Title, post.Body))

	dec = eng.CheckPost(ctx, "writer", "stories", post)
	assert.False(dec.CanPost)
	assert.Equal([]string{"duplicate post: identical content already submitted to r/stories in the last 24 hours"}, dec.Reasons)
	assert.Equal(1, dec.PostsInLast24h)

	// fresh content sails through
	dec = eng.CheckPost(ctx, "writer", "stories", engine.PostMeta{Title: "new story", Body: "different words entirely"})
	assert.True(dec.CanPost)
}
