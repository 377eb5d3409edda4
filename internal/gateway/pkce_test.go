package gateway_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeflow/gateway/internal/gateway"
)

func TestNewChallenge(t *testing.T) {
	t.Parallel()

	ch, err := gateway.NewChallenge("tenant-1")
	require.NoError(t, err)

	assert.NotEmpty(t, ch.Verifier)
	assert.NotEmpty(t, ch.State)
	assert.Equal(t, "tenant-1", ch.TenantID)

	// code_challenge is the base64url SHA-256 of the verifier (S256).
	sum := sha256.Sum256([]byte(ch.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), ch.Challenge)
}

func TestNewChallenge_Unique(t *testing.T) {
	t.Parallel()

	a, err := gateway.NewChallenge("t")
	require.NoError(t, err)
	b, err := gateway.NewChallenge("t")
	require.NoError(t, err)

	assert.NotEqual(t, a.Verifier, b.Verifier)
	assert.NotEqual(t, a.State, b.State)
}

func TestChallengeStore_ConsumeOnce(t *testing.T) {
	t.Parallel()

	store := gateway.NewChallengeStore()

	ch, err := gateway.NewChallenge("t1")
	require.NoError(t, err)
	store.Put(ch)

	got, ok := store.Consume(ch.State)
	require.True(t, ok)
	assert.Equal(t, ch.Verifier, got.Verifier)

	// A consumed challenge is gone; replayed callbacks are rejected.
	_, ok = store.Consume(ch.State)
	assert.False(t, ok)
}

func TestChallengeStore_UnknownState(t *testing.T) {
	t.Parallel()

	store := gateway.NewChallengeStore()

	_, ok := store.Consume("never-issued")
	assert.False(t, ok)
}
