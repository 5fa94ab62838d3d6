package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type SignupUserMessage struct {
	Username   string `json:"username" example:"pepe.rone" doc:"Public handle, defaults to the email local part."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email, unique."`
	Phone      string `json:"phone" example:"+15551234567" doc:"Optional phone number."`
	Password   string `json:"password" example:"s3cret!" doc:"Cleartext password, stored only as a hash."`
	UseHashid  bool
	OnResponse func(resp *SignupUserResponse)
}

func (e SignupUserMessage) Type() string { return "accounts.signup" }

type SignupUserResponse struct {
	User   *User
	Detail string
}

type SignupUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
}

func NewSignupUserHandler(repo RepositoryManager, notifier Notifier) *SignupUserHandler {
	return &SignupUserHandler{
		repo:     repo,
		notifier: notifier,
	}
}

func (h *SignupUserHandler) Execute(ctx context.Context, event SignupUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupUserHandler) execute(ctx context.Context, event SignupUserMessage) error {
	user := &User{}
	resp := &SignupUserResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}

		if existing != nil {
			return ErrEmailTaken
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = event.Phone
		user.Username = getUsername(event.Username, event.Email)
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user signup transaction failed")
	}

	if h.notifier != nil {
		h.notifier.ScheduleConfirmation(user)
	}

	resp.User = user
	resp.Detail = "User successfully created. Check your email for confirmation."

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	return usernameFromEmail(email)
}
