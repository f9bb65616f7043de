package apikey

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/boron/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s)
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.NotEqual(t, a, b)
	// 32 bytes of entropy survive the encoding
	assert.Greater(t, len(a), 40)
}

func TestCreateAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "claude-desktop")
	require.NoError(t, err)

	assert.Equal(t, "claude-desktop", created.Name)
	assert.True(t, strings.HasPrefix(created.Key, KeyPrefix))
	assert.Equal(t, created.Key[:prefixLen], created.KeyPrefix)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "claude-desktop", keys[0].Name)
	assert.Equal(t, created.Key, keys[0].FullKey)
	assert.NotEqual(t, created.Key, keys[0].KeyHash)
	assert.Empty(t, keys[0].LastUsed)
}

func TestValidateStampsLastUsed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "cursor")
	require.NoError(t, err)

	ok, err := svc.Validate(ctx, created.Key)
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotEmpty(t, keys[0].LastUsed)
}

func TestValidateRejectsUnknownKey(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "cursor")
	require.NoError(t, err)

	forged, err := Generate()
	require.NoError(t, err)

	ok, err := svc.Validate(ctx, forged)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Validate(ctx, "not-even-prefixed")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteByPrefix(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "second")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, first.KeyPrefix)
	require.NoError(t, err)
	assert.True(t, removed)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "second", keys[0].Name)

	// deleted keys no longer authenticate
	ok, err := svc.Validate(ctx, first.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteMissingPrefix(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	removed, err := svc.Delete(ctx, "gk_nosuchkey")
	require.NoError(t, err)
	assert.False(t, removed)
}
