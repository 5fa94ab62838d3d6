package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConfirmEmailHandler(t *testing.T) {
	ctx := context.Background()
	tokens := accounts.NewTokenService(newTestConfig(), nil)

	t.Run("confirms the account behind a valid token", func(t *testing.T) {
		token, err := tokens.CreateEmailToken("test@example.com")
		require.NoError(t, err)

		users := new(MockUsers)
		users.On("GetByEmailTx", mock.Anything, mock.Anything, "test@example.com").
			Return(&accounts.User{Email: "test@example.com"}, nil).Once()
		users.On("ConfirmEmailTx", mock.Anything, mock.Anything, "test@example.com").
			Return(nil).Once()

		var resp *accounts.ConfirmEmailResponse
		handler := accounts.NewConfirmEmailHandler(&fakeRepoManager{users: users}, tokens)
		err = handler.Execute(ctx, accounts.ConfirmEmailMessage{
			Token: token,
			OnResponse: func(r *accounts.ConfirmEmailResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Email confirmed", resp.Message)
		assert.True(t, resp.Confirmed)

		users.AssertExpectations(t)
	})

	t.Run("already confirmed account is left alone", func(t *testing.T) {
		token, err := tokens.CreateEmailToken("test@example.com")
		require.NoError(t, err)

		users := new(MockUsers)
		users.On("GetByEmailTx", mock.Anything, mock.Anything, "test@example.com").
			Return(&accounts.User{Email: "test@example.com", Confirmed: true}, nil).Once()

		var resp *accounts.ConfirmEmailResponse
		handler := accounts.NewConfirmEmailHandler(&fakeRepoManager{users: users}, tokens)
		err = handler.Execute(ctx, accounts.ConfirmEmailMessage{
			Token: token,
			OnResponse: func(r *accounts.ConfirmEmailResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Your email is already confirmed", resp.Message)
		assert.True(t, resp.Confirmed)

		users.AssertNotCalled(t, "ConfirmEmailTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("garbage token is a verification error", func(t *testing.T) {
		users := new(MockUsers)
		handler := accounts.NewConfirmEmailHandler(&fakeRepoManager{users: users}, tokens)

		err := handler.Execute(ctx, accounts.ConfirmEmailMessage{Token: "not-a-token"})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, accounts.ErrVerificationFailed.TextCode, richErr.TextCode)
		assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)

		users.AssertNotCalled(t, "GetByEmailTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("access token is rejected by scope", func(t *testing.T) {
		access, err := tokens.CreateAccessToken("test@example.com")
		require.NoError(t, err)

		handler := accounts.NewConfirmEmailHandler(&fakeRepoManager{users: new(MockUsers)}, tokens)
		err = handler.Execute(ctx, accounts.ConfirmEmailMessage{Token: access})

		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, accounts.ErrVerificationFailed.TextCode, richErr.TextCode)
	})

	t.Run("token for a deleted account is a verification error", func(t *testing.T) {
		token, err := tokens.CreateEmailToken("gone@example.com")
		require.NoError(t, err)

		users := new(MockUsers)
		users.On("GetByEmailTx", mock.Anything, mock.Anything, "gone@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		handler := accounts.NewConfirmEmailHandler(&fakeRepoManager{users: users}, tokens)
		err = handler.Execute(ctx, accounts.ConfirmEmailMessage{Token: token})

		assert.ErrorIs(t, err, accounts.ErrVerificationFailed)
		users.AssertExpectations(t)
	})
}
