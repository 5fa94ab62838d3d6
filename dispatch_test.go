package accounts_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversConfirmation(t *testing.T) {
	tokens := accounts.NewTokenService(newTestConfig(), nil)
	mailer := newCapturingMailer(1)

	dispatcher := accounts.NewDispatcher(mailer, tokens, "http://localhost:8572")
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	dispatcher.ScheduleConfirmation(&accounts.User{
		Username: "testuser",
		Email:    "test@example.com",
	})

	select {
	case <-mailer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for confirmation email")
	}

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "test@example.com", sent[0].To)
	assert.Equal(t, "Confirm your email", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "/auth/confirmed_email/")
	assert.NotEmpty(t, sent[0].HTMLBody)
}

func TestDispatcherLinkCarriesEmailToken(t *testing.T) {
	tokens := accounts.NewTokenService(newTestConfig(), nil)

	msg, err := accounts.NewConfirmationMessage("http://localhost:8572/", tokens, &accounts.User{
		Username: "testuser",
		Email:    "test@example.com",
	})
	require.NoError(t, err)

	prefix := "http://localhost:8572/auth/confirmed_email/"
	require.Contains(t, msg.Body, prefix)

	// pull the token back out of the link and decode it
	rest := msg.Body[strings.Index(msg.Body, prefix)+len(prefix):]
	fields := strings.Fields(rest)
	require.NotEmpty(t, fields)
	token := fields[0]

	subject, err := tokens.DecodeEmailToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", subject)
}

func TestDispatcherDropsWhenSaturated(t *testing.T) {
	tokens := accounts.NewTokenService(newTestConfig(), nil)
	mailer := newCapturingMailer(1)

	// never started, nothing drains the queue
	dispatcher := accounts.NewDispatcher(mailer, tokens, "http://localhost:8572",
		accounts.WithDispatcherQueueSize(1))

	dispatcher.ScheduleConfirmation(&accounts.User{Email: "first@example.com"})

	// queue is full now, this must not block or panic
	done := make(chan struct{})
	go func() {
		dispatcher.ScheduleConfirmation(&accounts.User{Email: "second@example.com"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ScheduleConfirmation blocked on a saturated queue")
	}

	assert.Empty(t, mailer.messages())
}

func TestDispatcherIgnoresNilUser(t *testing.T) {
	dispatcher := accounts.NewDispatcher(newCapturingMailer(1), accounts.NewTokenService(newTestConfig(), nil), "http://localhost:8572")
	assert.NotPanics(t, func() {
		dispatcher.ScheduleConfirmation(nil)
	})
}
