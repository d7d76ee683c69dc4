package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStoreRevoke(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "token-a", time.Hour))

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other tokens are unaffected.
	revoked, err = store.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryTokenStoreExpiredTTL(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	// A token past its lifetime needs no denylist entry.
	require.NoError(t, store.Revoke(ctx, "stale", -time.Minute))

	revoked, err := store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}
