package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormBool(t *testing.T) {
	for _, v := range []string{"Y", "y", "yes", "TRUE", "true", "1", "on", " Y "} {
		assert.True(t, FormBool(v), "%q should be truthy", v)
	}
	for _, v := range []string{"", "N", "no", "false", "0", "off", "maybe"} {
		assert.False(t, FormBool(v), "%q should be falsy", v)
	}
}

func TestNormalizeAvailability(t *testing.T) {
	assert.Equal(t, "Y", NormalizeAvailability("Y"))
	assert.Equal(t, "Y", NormalizeAvailability("y"))
	assert.Equal(t, "Y", NormalizeAvailability(" Y "))
	// Everything that is not exactly available collapses to not-available.
	for _, v := range []string{"", "N", "n", "yes", "true", "available", "garbage"} {
		assert.Equal(t, "N", NormalizeAvailability(v))
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1", 4) // minimum cost keeps the test fast
	assert.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw1"))
	assert.False(t, VerifyPassword(hash, "pw2"))
	assert.False(t, VerifyPassword("not-a-hash", "pw1"))
}
