package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrEmailTaken signals signup against an already registered email
var ErrEmailTaken = errors.New("Account already exists", errors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(errors.CodeConflict)

// ErrInvalidEmail is the failure for a login against an unknown email
var ErrInvalidEmail = errors.New("Invalid email", errors.CategoryAuth).
	WithTextCode("INVALID_EMAIL").
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotConfirmed is the failure for a login before confirmation
var ErrEmailNotConfirmed = errors.New("Email not confirmed", errors.CategoryAuth).
	WithTextCode("EMAIL_NOT_CONFIRMED").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidPassword is the failure for a password mismatch at login
var ErrInvalidPassword = errors.New("Invalid password", errors.CategoryAuth).
	WithTextCode("INVALID_PASSWORD").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRefreshToken signals a refresh attempt with a token that does
// not match the one on record
var ErrInvalidRefreshToken = errors.New("Invalid refresh token", errors.CategoryAuth).
	WithTextCode("INVALID_REFRESH_TOKEN").
	WithCode(errors.CodeUnauthorized)

// ErrVerificationFailed covers confirmation tokens that do not decode or
// do not resolve to a user
var ErrVerificationFailed = errors.New("Verification error", errors.CategoryBadInput).
	WithTextCode("VERIFICATION_ERROR").
	WithCode(errors.CodeBadRequest)

// ErrContactNotFound signals a contact lookup that resolved to nothing
// the requesting user owns
var ErrContactNotFound = errors.New("Contact not found", errors.CategoryNotFound).
	WithTextCode("CONTACT_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is returned when decoding a token past its expiration
var ErrTokenExpired = errors.New("Token expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails to parse or verify
var ErrTokenMalformed = errors.New("Token malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenScope is returned when a token decodes fine but carries the
// wrong scope claim for the operation
var ErrTokenScope = errors.New("Invalid token scope", errors.CategoryAuth).
	WithTextCode("TOKEN_SCOPE").
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while an account is cooling down
var ErrTooManyLoginAttempts = errors.New("Too many login attempts", errors.CategoryAuth).
	WithTextCode("TOO_MANY_ATTEMPTS").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password cannot be empty", errors.CategoryBadInput).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
