package histstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemHistStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	hs := NewMemHistStore()

	rec, err := hs.Get(ctx, "u_1001", "gonewildstories")
	assert.NoError(err)
	assert.Nil(rec)

	assert.NoError(hs.Touch(ctx, "u_1001", "gonewildstories", now.Add(-2*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_1001", "selfie_club", now.Add(-30*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_2002", "gonewildstories", now.Add(-time.Minute)))

	rec, err = hs.Get(ctx, "u_1001", "gonewildstories")
	assert.NoError(err)
	assert.NotNil(rec)
	assert.WithinDuration(now.Add(-2*time.Hour), rec.LastPostAt, time.Second)

	// a later post to the same community replaces the record
	assert.NoError(hs.Touch(ctx, "u_1001", "gonewildstories", now.Add(-time.Hour)))
	rec, err = hs.Get(ctx, "u_1001", "gonewildstories")
	assert.NoError(err)
	assert.WithinDuration(now.Add(-time.Hour), rec.LastPostAt, time.Second)

	// recent window excludes both the stale record and other users
	recent, err := hs.GetRecent(ctx, "u_1001", now.Add(-24*time.Hour))
	assert.NoError(err)
	assert.Equal(1, len(recent))
	assert.Equal("gonewildstories", recent[0].Community)

	// widening the window picks the older community back up, newest first
	recent, err = hs.GetRecent(ctx, "u_1001", now.Add(-48*time.Hour))
	assert.NoError(err)
	assert.Equal(2, len(recent))
	assert.Equal("gonewildstories", recent[0].Community)
	assert.Equal("selfie_club", recent[1].Community)
}

func TestMemHistStoreListUsers(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	now := time.Now()

	hs := NewMemHistStore()

	users, err := hs.ListUsers(ctx, now.Add(-24*time.Hour))
	assert.NoError(err)
	assert.Empty(users)

	assert.NoError(hs.Touch(ctx, "u_3003", "gaming", now.Add(-time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_3003", "pics", now.Add(-2*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_1001", "gaming", now.Add(-3*time.Hour)))
	assert.NoError(hs.Touch(ctx, "u_9009", "gaming", now.Add(-72*time.Hour)))

	// users with multiple communities appear once; idle users fall outside
	// the window
	users, err = hs.ListUsers(ctx, now.Add(-24*time.Hour))
	assert.NoError(err)
	assert.Equal([]string{"u_1001", "u_3003"}, users)

	users, err = hs.ListUsers(ctx, now.Add(-96*time.Hour))
	assert.NoError(err)
	assert.Equal([]string{"u_1001", "u_3003", "u_9009"}, users)
}
