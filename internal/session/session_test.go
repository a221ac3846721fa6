package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseRoundTrip(t *testing.T) {
	sid, err := NewSID()
	require.NoError(t, err)
	require.Len(t, sid, 48) // 24 random bytes, hex encoded

	in := Session{SID: sid, UserID: 42, Name: "Alice", Email: "alice@example.com", IsManager: true}
	token, err := SignToken("secret", in, time.Hour)
	require.NoError(t, err)

	out, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := SignToken("secret-a", Session{SID: "s", UserID: 1}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbageAndExpired(t *testing.T) {
	_, err := ParseToken("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := SignToken("secret", Session{SID: "s", UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewSIDsAreUnique(t *testing.T) {
	a, err := NewSID()
	require.NoError(t, err)
	b, err := NewSID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStoreWithoutRedisDegradesOpen(t *testing.T) {
	// With no Redis client the registry must not lock anyone out: every
	// well-signed session counts as alive and lifecycle calls are no-ops.
	s := NewStore(nil, time.Hour)
	ctx := context.Background()

	assert.NoError(t, s.Register(ctx, "sid", 1))
	assert.True(t, s.Alive(ctx, "sid"))
	assert.True(t, s.Alive(ctx, "never-registered"))
	assert.NoError(t, s.Destroy(ctx, "sid"))
}
