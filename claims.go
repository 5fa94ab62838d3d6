package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Every token the module signs carries exactly one.
const (
	// ScopeAccess authorizes API calls, short lived
	ScopeAccess = "access_token"
	// ScopeRefresh mints new pairs, long lived, persisted per user
	ScopeRefresh = "refresh_token"
	// ScopeEmail confirms an email address, single purpose
	ScopeEmail = "email_token"
)

// AuthClaims represents structured JWT claims with scope checking
type AuthClaims interface {
	Subject() string
	UserID() string
	Scope() string
	HasScope(scope string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	TokenScope string `json:"scope,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user identifier, the subject email
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Scope returns the token scope claim
func (c *JWTClaims) Scope() string {
	return c.TokenScope
}

// HasScope checks the token scope claim against the given scope
func (c *JWTClaims) HasScope(scope string) bool {
	return c.TokenScope == scope
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issue time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
