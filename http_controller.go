package accounts

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RegisterAuthRoutes mounts the authentication endpoints on the given router
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Signup, controller.SignupPost).
		SetName("signup.post")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("login.post")

	app.
		Get(controller.Routes.RefreshToken, controller.RefreshTokenGet).
		SetName("refresh-token.get")

	app.
		Get(fmt.Sprintf("%s/:token", controller.Routes.ConfirmedEmail), controller.ConfirmedEmailGet).
		SetName("confirmed-email.get")

	app.
		Post(controller.Routes.RequestEmail, controller.RequestEmailPost).
		SetName("request-email.post")
}

type AuthControllerRoutes struct {
	Signup         string
	Login          string
	RefreshToken   string
	ConfirmedEmail string
	RequestEmail   string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	Notifier     Notifier
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Signup:         "/auth/signup",
			Login:          "/auth/login",
			RefreshToken:   "/auth/refresh_token",
			ConfirmedEmail: "/auth/confirmed_email",
			RequestEmail:   "/auth/request_email",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerNotifier(n Notifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = n
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func WithControllerErrorHandler(h router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if h != nil {
			c.ErrorHandler = h
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// SignupRequest is the signup payload
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone_number" json:"phone_number"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(5, 16)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(validatePhoneNumber)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

func validatePhoneNumber(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(raw, "US")
	if err != nil {
		return fmt.Errorf("must be a valid phone number")
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return fmt.Errorf("must be a valid phone number")
	}

	return nil
}

// SignupResponse is what a successful signup returns
type SignupResponse struct {
	User   *UserDTO `json:"user"`
	Detail string   `json:"detail"`
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	if a.Debug {
		a.Logger.Debug("signup payload", "payload", print.MaybePrettyJSON(payload))
	}

	resp := &SignupUserResponse{}
	signup := NewSignupUserHandler(a.Repo, a.Notifier)
	err := signup.Execute(ctx.Context(), SignupUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
		OnResponse: func(r *SignupUserResponse) {
			resp = r
		},
	})

	if err != nil {
		a.Logger.Error("signup execute", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, SignupResponse{
		User:   NewUserDTO(resp.User),
		Detail: resp.Detail,
	})
}

// LoginRequest is the login payload, username carries the account email
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Info("login rejected", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, pair)
}

func (a *AuthController) RefreshTokenGet(ctx router.Context) error {
	raw, err := BearerToken(ctx, "Bearer")
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	pair, err := a.Auther.Refresh(ctx.Context(), raw)
	if err != nil {
		a.Logger.Info("refresh rejected", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, pair)
}

// MessageResponse is a bare confirmation style response
type MessageResponse struct {
	Message string `json:"message"`
}

func (a *AuthController) ConfirmedEmailGet(ctx router.Context) error {
	token := ctx.Param("token")

	resp := &ConfirmEmailResponse{}
	confirm := NewConfirmEmailHandler(a.Repo, a.Auther.TokenService())
	err := confirm.Execute(ctx.Context(), ConfirmEmailMessage{
		Token: token,
		OnResponse: func(r *ConfirmEmailResponse) {
			resp = r
		},
	})

	if err != nil {
		a.Logger.Info("email confirmation rejected", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}

// RequestEmailRequest is the payload asking for a new confirmation email
type RequestEmailRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r RequestEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RequestEmailPost(ctx router.Context) error {
	payload := new(RequestEmailRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("request email parse payload", "error", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	resp := &RequestConfirmationResponse{}
	request := NewRequestConfirmationHandler(a.Repo, a.Notifier)
	err := request.Execute(ctx.Context(), RequestConfirmationMessage{
		Email: payload.Email,
		OnResponse: func(r *RequestConfirmationResponse) {
			resp = r
		},
	})

	if err != nil {
		a.Logger.Error("request email execute", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}
