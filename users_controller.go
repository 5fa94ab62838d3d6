package accounts

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterUserRoutes mounts the token protected account endpoints
func RegisterUserRoutes[T any](app router.Router[T], opts ...UsersControllerOption) {
	controller := NewUsersController(opts...)

	app.
		Get(controller.Routes.Me, controller.Protected(controller.MeGet)).
		SetName("users-me.get")

	app.
		Post(controller.Routes.Avatar, controller.Protected(controller.AvatarPost)).
		SetName("users-avatar.post")
}

type UsersControllerRoutes struct {
	Me     string
	Avatar string
}

type UsersController struct {
	Logger       Logger
	Repo         RepositoryManager
	ContextKey   string
	Protected    router.MiddlewareFunc
	Routes       *UsersControllerRoutes
	ErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:       defLogger{},
		ContextKey:   "user",
		ErrorHandler: defaultErrHandler,
		Routes: &UsersControllerRoutes{
			Me:     "/users/me",
			Avatar: "/users/avatar",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}

	if c.Protected == nil {
		panic("Missing auth middleware in users controller...")
	}

	return c
}

func WithUsersLogger(l Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithUsersRepo(repo RepositoryManager) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Repo = repo
		return c
	}
}

func WithUsersProtected(mw router.MiddlewareFunc) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Protected = mw
		return c
	}
}

func WithUsersContextKey(key string) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithUsersErrorHandler(h router.ErrorHandler) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if h != nil {
			c.ErrorHandler = h
		}
		return c
	}
}

func (u *UsersController) MeGet(ctx router.Context) error {
	user, err := u.currentUser(ctx)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, NewUserDTO(user))
}

// AvatarUpdateRequest carries the new avatar location
type AvatarUpdateRequest struct {
	Avatar string `form:"avatar" json:"avatar"`
}

// Validate will run validation rules
func (r AvatarUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.Required, is.URL),
	)
}

func (u *UsersController) AvatarPost(ctx router.Context) error {
	payload := new(AvatarUpdateRequest)

	if err := ctx.Bind(payload); err != nil {
		u.Logger.Error("avatar parse payload", "error", err)
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	user, err := u.currentUser(ctx)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	updated, err := u.Repo.Users().UpdateAvatar(ctx.Context(), user.ID, payload.Avatar)
	if err != nil {
		u.Logger.Error("avatar update", "error", err)
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update avatar"))
	}

	return ctx.JSON(http.StatusOK, NewUserDTO(updated))
}

func (u *UsersController) currentUser(ctx router.Context) (*User, error) {
	return sessionUser(ctx, u.Repo, u.ContextKey)
}

// sessionUser resolves the account behind the claims the auth middleware
// stored in the request locals
func sessionUser(ctx router.Context, repo RepositoryManager, contextKey string) (*User, error) {
	session, err := GetRouterSession(ctx, contextKey)
	if err != nil {
		return nil, err
	}

	user, err := repo.Users().GetByEmail(ctx.Context(), session.GetUserID())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, goerrors.New("account no longer exists", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve current user")
	}

	return user, nil
}
