package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, h.Compare(hash, "hunter22"))
	assert.False(t, h.Compare(hash, "hunter23"))
	assert.False(t, h.Compare("not-a-hash", "hunter22"))
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}
