package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RequestConfirmationMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *RequestConfirmationResponse)
}

func (e RequestConfirmationMessage) Type() string { return "accounts.request_confirmation" }

type RequestConfirmationResponse struct {
	Message string
}

type RequestConfirmationHandler struct {
	repo     RepositoryManager
	notifier Notifier
}

func NewRequestConfirmationHandler(repo RepositoryManager, notifier Notifier) *RequestConfirmationHandler {
	return &RequestConfirmationHandler{
		repo:     repo,
		notifier: notifier,
	}
}

func (h *RequestConfirmationHandler) Execute(ctx context.Context, event RequestConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during confirmation request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestConfirmationHandler) execute(ctx context.Context, event RequestConfirmationMessage) error {
	resp := &RequestConfirmationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// unknown address gets the same answer as a known one so the
			// endpoint does not leak which emails are registered
			resp.Message = "Check your email for confirmation."
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for confirmation request")
	}

	if user.Confirmed {
		resp.Message = "Your email is already confirmed"
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
		return nil
	}

	if h.notifier != nil {
		h.notifier.ScheduleConfirmation(user)
	}

	resp.Message = "Check your email for confirmation."
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
