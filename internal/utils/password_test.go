package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("korrekt-pferd-batterie", 4) // minimal cost keeps the test fast
	require.NoError(t, err)
	assert.NotEqual(t, "korrekt-pferd-batterie", hash)

	assert.True(t, VerifyPassword(hash, "korrekt-pferd-batterie"))
	assert.False(t, VerifyPassword(hash, "falsches-passwort"))
	assert.False(t, VerifyPassword("", "korrekt-pferd-batterie"))
}
