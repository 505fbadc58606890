package flagstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fs := NewMemFlagStore()

	l, err := fs.Get(ctx, "u_1001")
	assert.NoError(err)
	assert.Empty(l)

	assert.NoError(fs.Add(ctx, "u_1001", []string{"shadowban-suspected", "new-account"}))
	assert.NoError(fs.Add(ctx, "u_1001", []string{"shadowban-suspected"}))
	l, err = fs.Get(ctx, "u_1001")
	assert.NoError(err)
	assert.Equal(2, len(l))

	// clearing a flag that isn't set is not an error
	assert.NoError(fs.Remove(ctx, "u_1001", []string{"shadowban-suspected", "orange"}))
	l, err = fs.Get(ctx, "u_1001")
	assert.NoError(err)
	assert.Equal([]string{"new-account"}, l)
}

func TestRedisFlagStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	fs, err := NewRedisFlagStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}

	l, err := fs.Get(ctx, "test1")
	assert.NoError(err)
	assert.Empty(l)

	assert.NoError(fs.Add(ctx, "test1", []string{"red", "green"}))
	assert.NoError(fs.Add(ctx, "test1", []string{"red", "blue"}))
	l, err = fs.Get(ctx, "test1")
	assert.NoError(err)
	assert.Equal(3, len(l))

	assert.NoError(fs.Remove(ctx, "test1", []string{"red", "blue", "orange"}))
	l, err = fs.Get(ctx, "test1")
	assert.NoError(err)
	assert.Equal([]string{"green"}, l)
	assert.NoError(fs.Remove(ctx, "test1", []string{"green"}))
}
