package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestConfirmationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfirmed account gets a fresh email", func(t *testing.T) {
		user := &accounts.User{Email: "test@example.com"}

		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()

		notifier := new(MockNotifier)
		notifier.On("ScheduleConfirmation", user).Once()

		var resp *accounts.RequestConfirmationResponse
		handler := accounts.NewRequestConfirmationHandler(&fakeRepoManager{users: users}, notifier)
		err := handler.Execute(ctx, accounts.RequestConfirmationMessage{
			Email: "test@example.com",
			OnResponse: func(r *accounts.RequestConfirmationResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Check your email for confirmation.", resp.Message)

		notifier.AssertExpectations(t)
	})

	t.Run("confirmed account gets no email", func(t *testing.T) {
		user := &accounts.User{Email: "test@example.com", Confirmed: true}

		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()

		notifier := new(MockNotifier)

		var resp *accounts.RequestConfirmationResponse
		handler := accounts.NewRequestConfirmationHandler(&fakeRepoManager{users: users}, notifier)
		err := handler.Execute(ctx, accounts.RequestConfirmationMessage{
			Email: "test@example.com",
			OnResponse: func(r *accounts.RequestConfirmationResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Your email is already confirmed", resp.Message)

		notifier.AssertNotCalled(t, "ScheduleConfirmation", mock.Anything)
	})

	t.Run("unknown address is indistinguishable from a known one", func(t *testing.T) {
		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		notifier := new(MockNotifier)

		var resp *accounts.RequestConfirmationResponse
		handler := accounts.NewRequestConfirmationHandler(&fakeRepoManager{users: users}, notifier)
		err := handler.Execute(ctx, accounts.RequestConfirmationMessage{
			Email: "nobody@example.com",
			OnResponse: func(r *accounts.RequestConfirmationResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Check your email for confirmation.", resp.Message)

		notifier.AssertNotCalled(t, "ScheduleConfirmation", mock.Anything)
	})
}
