package accounts

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var _ Session = &SessionObject{}

type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Scope          string         `json:"scope,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetScope() string {
	return s.Scope
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

func (s *SessionObject) String() string {
	issuedAt := ""
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"user=%s scope=%s aud=%v iss=%s iat=%s",
		s.UserID,
		s.Scope,
		s.Audience,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from AuthClaims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, errors.New("unable to parse session claims", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	var audience []string
	var issuer string
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		audience = append(audience, jwtClaims.RegisteredClaims.Audience...)
		issuer = jwtClaims.RegisteredClaims.Issuer
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:         claims.UserID(),
		Scope:          claims.Scope(),
		Audience:       audience,
		Issuer:         issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

// GetRouterSession pulls the claims the auth middleware stored in the
// request locals and converts them into a Session.
func GetRouterSession(c router.Context, contextKey string) (Session, error) {
	raw := c.Locals(contextKey)
	if raw == nil {
		return nil, errors.New("no session in request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil, errors.New("unexpected session payload in request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	return sessionFromAuthClaims(claims)
}
