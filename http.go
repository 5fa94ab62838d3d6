package accounts

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-accounts/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// HTTPError is the JSON error envelope every endpoint returns
type HTTPError struct {
	Message  string            `json:"message"`
	TextCode string            `json:"text_code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// HTTPErrorResponse wraps HTTPError for the wire
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// tokenValidatorAdapter bridges the module's TokenService into the
// middleware's validator interface
type tokenValidatorAdapter struct {
	tokens TokenService
}

func (v tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Protected builds the middleware guarding routes that require a valid
// access token. Refresh and email tokens do not pass the scope check.
func Protected(cfg Config, tokens TokenService, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = defaultAuthErrHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: tokenValidatorAdapter{tokens: tokens},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		RequiredScope:  ScopeAccess,
	})
}

// BearerToken pulls the raw token out of the Authorization header
func BearerToken(c router.Context, authScheme string) (string, error) {
	if authScheme == "" {
		authScheme = "Bearer"
	}

	raw := c.GetString(router.HeaderAuthorization, "")
	l := len(authScheme)
	if len(raw) > l+1 && strings.EqualFold(raw[:l], authScheme) {
		return strings.TrimSpace(raw[l:]), nil
	}

	return "", ErrTokenMalformed
}

func defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	resp := HTTPErrorResponse{
		Error: HTTPError{
			Message:  richErr.Message,
			TextCode: richErr.TextCode,
		},
	}

	if richErr.Category == errors.CategoryValidation {
		resp.Error.Fields = richErr.ValidationMap()
	}

	return c.JSON(status, resp)
}

func defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
			WithCode(errors.CodeUnauthorized)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusUnauthorized
	}

	return c.JSON(status, HTTPErrorResponse{
		Error: HTTPError{
			Message:  richErr.Message,
			TextCode: richErr.TextCode,
		},
	})
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryBadInput, errors.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
