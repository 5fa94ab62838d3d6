package accounts_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service with logger", func(t *testing.T) {
		service := accounts.NewTokenService(newTestConfig(), nil)
		assert.NotNil(t, service)
	})
}

func TestTokenServiceCreateAndDecode(t *testing.T) {
	service := accounts.NewTokenService(newTestConfig(), nil)

	t.Run("refresh token round trip", func(t *testing.T) {
		token, err := service.CreateRefreshToken("test@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		subject, err := service.DecodeRefreshToken(token)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", subject)
	})

	t.Run("email token round trip", func(t *testing.T) {
		token, err := service.CreateEmailToken("test@example.com")
		require.NoError(t, err)

		subject, err := service.DecodeEmailToken(token)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", subject)
	})

	t.Run("access token carries the access scope", func(t *testing.T) {
		token, err := service.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		claims, err := service.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", claims.Subject())
		assert.True(t, claims.HasScope(accounts.ScopeAccess))
		assert.False(t, claims.HasScope(accounts.ScopeRefresh))
	})

	t.Run("empty subject is rejected", func(t *testing.T) {
		_, err := service.CreateAccessToken("")
		assert.Error(t, err)
	})
}

func TestTokenServiceScopeEnforcement(t *testing.T) {
	service := accounts.NewTokenService(newTestConfig(), nil)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		token, err := service.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		_, err = service.DecodeRefreshToken(token)
		assert.ErrorIs(t, err, accounts.ErrTokenScope)
	})

	t.Run("refresh token is not an email token", func(t *testing.T) {
		token, err := service.CreateRefreshToken("test@example.com")
		require.NoError(t, err)

		_, err = service.DecodeEmailToken(token)
		assert.ErrorIs(t, err, accounts.ErrTokenScope)
	})
}

func TestTokenServiceValidateFailures(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.accessTTL = time.Nanosecond
		service := accounts.NewTokenService(cfg, nil)

		token, err := service.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, accounts.ErrTokenExpired)
	})

	t.Run("malformed token", func(t *testing.T) {
		service := accounts.NewTokenService(newTestConfig(), nil)

		_, err := service.Validate("not-a-token")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, accounts.ErrTokenMalformed.TextCode, richErr.TextCode)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		service := accounts.NewTokenService(newTestConfig(), nil)

		other := newTestConfig()
		other.signingKey = "another-signing-key"
		otherService := accounts.NewTokenService(other, nil)

		token, err := otherService.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		service := accounts.NewTokenService(newTestConfig(), nil)

		other := newTestConfig()
		other.issuer = "another-issuer"
		otherService := accounts.NewTokenService(other, nil)

		token, err := otherService.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.Error(t, err)
	})
}
