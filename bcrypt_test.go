package accounts_test

import (
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes a non empty password", func(t *testing.T) {
		hash, err := accounts.HashPassword("password123")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "password123", hash)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		hash, err := accounts.HashPassword("")
		assert.ErrorIs(t, err, accounts.ErrNoEmptyString)
		assert.Empty(t, hash)
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := accounts.HashPassword("password123")
	require.NoError(t, err)

	t.Run("accepts the matching password", func(t *testing.T) {
		assert.NoError(t, accounts.ComparePasswordAndHash("password123", hash))
	})

	t.Run("rejects a different password", func(t *testing.T) {
		err := accounts.ComparePasswordAndHash("not-the-password", hash)
		assert.ErrorIs(t, err, accounts.ErrMismatchedHashAndPassword)
	})
}
