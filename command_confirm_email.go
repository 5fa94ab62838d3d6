package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ConfirmEmailMessage struct {
	Token      string `json:"token" doc:"Email scoped confirmation token."`
	OnResponse func(resp *ConfirmEmailResponse)
}

func (e ConfirmEmailMessage) Type() string { return "accounts.confirm_email" }

type ConfirmEmailResponse struct {
	Message   string
	Confirmed bool
}

type ConfirmEmailHandler struct {
	repo   RepositoryManager
	tokens TokenService
}

func NewConfirmEmailHandler(repo RepositoryManager, tokens TokenService) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{
		repo:   repo,
		tokens: tokens,
	}
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	resp := &ConfirmEmailResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email, err := h.tokens.DecodeEmailToken(event.Token)
	if err != nil {
		// a bad token is expected input, not an application error
		return goerrors.Wrap(err, ErrVerificationFailed.Category, ErrVerificationFailed.Message).
			WithTextCode(ErrVerificationFailed.TextCode).
			WithCode(goerrors.CodeBadRequest)
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrVerificationFailed
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for confirmation")
		}

		if user.Confirmed {
			resp.Message = "Your email is already confirmed"
			resp.Confirmed = true
			return nil
		}

		if err := h.repo.Users().ConfirmEmailTx(ctx, tx, email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as confirmed")
		}

		resp.Message = "Email confirmed"
		resp.Confirmed = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email confirmation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
