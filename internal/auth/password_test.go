package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("short passwords are accepted", func(t *testing.T) {
		hash, err := HashPassword("x", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, "x", hash)
		assert.NoError(t, CheckPassword("x", hash))
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := HashPassword("", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})

	t.Run("zero cost uses bcrypt default", func(t *testing.T) {
		hash, err := HashPassword("secret", 0)
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("correct horse", hash))
	assert.ErrorIs(t, CheckPassword("wrong", hash), ErrInvalidPassword)
	assert.Error(t, CheckPassword("anything", "not-a-hash"))
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, NeedsRehash(hash, bcrypt.MinCost))
	assert.True(t, NeedsRehash(hash, bcrypt.MinCost+1))
	assert.True(t, NeedsRehash(hash, 0))
	assert.False(t, NeedsRehash("not-a-hash", bcrypt.MaxCost))
}
