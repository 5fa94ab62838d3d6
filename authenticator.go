package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RefreshTokenStore persists the refresh token issued to an account
type RefreshTokenStore interface {
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}

// Auther implements Authenticator on top of a credentials provider,
// a token service, and the refresh token store.
type Auther struct {
	provider CredentialsVerifier
	store    RefreshTokenStore
	tokens   TokenService
	logger   Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator creates a new Auther
func NewAuthenticator(provider CredentialsVerifier, store RefreshTokenStore, tokens TokenService) *Auther {
	return &Auther{
		provider: provider,
		store:    store,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(l Logger) *Auther {
	if l != nil {
		s.logger = l
	}
	return s
}

// TokenService exposes the underlying token service
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies the credentials and mints a fresh token pair, the
// refresh token is persisted on the user record.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.provider.VerifyUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return pair, nil
}

// Refresh rotates a refresh token: the presented token must decode and
// match the one on record, a mismatch clears the stored token so both
// the presented and any previously issued token stop working.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.provider.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during refresh")
	}

	if !user.HasRefreshToken(refreshToken) {
		s.logger.Warn("refresh token mismatch, invalidating stored token", "user", user.ID.String())
		if err := s.store.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			s.logger.Error("failed to invalidate refresh token", "error", err)
		}
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return pair, nil
}

// SessionFromToken decodes an access token into a Session
func (s *Auther) SessionFromToken(token string) (Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	return sessionFromAuthClaims(claims)
}

func (s *Auther) mintPair(email string) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create access token")
	}

	refresh, err := s.tokens.CreateRefreshToken(email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create refresh token")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
