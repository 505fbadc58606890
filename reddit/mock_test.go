package reddit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockClient(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	c := NewMockClient()

	c.InsertUser(UserAbout{Username: "alice", LinkKarma: 100, CommentKarma: 20})
	c.InsertSubmissions("alice",
		[]Submission{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]Submission{{ID: "a"}, {ID: "c"}},
	)

	about, err := c.AboutUser(ctx, "alice")
	assert.NoError(err)
	assert.Equal(120, about.Karma())

	_, err = c.AboutUser(ctx, "nobody")
	assert.Error(err)

	self, err := c.SelfSubmissions(ctx, "alice", 2)
	assert.NoError(err)
	assert.Equal(2, len(self))

	public, err := c.PublicSubmissions(ctx, "alice", 25)
	assert.NoError(err)
	assert.Equal(2, len(public))

	res, err := c.Submit(ctx, SubmitRequest{Community: "x", Title: "t", Kind: PostKindSelf, Body: "b"})
	assert.NoError(err)
	assert.Equal("mock1", res.ID)
	assert.Equal(1, len(c.Submitted))

	// validation applies to the mock too
	_, err = c.Submit(ctx, SubmitRequest{Community: "x", Kind: PostKindSelf})
	assert.ErrorIs(err, ErrEmptyContent)
	assert.Equal(1, len(c.Submitted))
}
