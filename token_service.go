package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	emailTokenTTL   time.Duration
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	accessTTL := cfg.GetAccessTokenTTL()
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}

	refreshTTL := cfg.GetRefreshTokenTTL()
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	emailTTL := cfg.GetEmailTokenTTL()
	if emailTTL <= 0 {
		emailTTL = 7 * 24 * time.Hour
	}

	return &TokenServiceImpl{
		signingKey:      []byte(cfg.GetSigningKey()),
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		emailTokenTTL:   emailTTL,
		issuer:          cfg.GetIssuer(),
		audience:        cfg.GetAudience(),
		logger:          logger,
	}
}

// CreateAccessToken signs a short lived token with the access scope
func (ts *TokenServiceImpl) CreateAccessToken(subject string) (string, error) {
	return ts.generate(subject, ScopeAccess, ts.accessTokenTTL)
}

// CreateRefreshToken signs a long lived token with the refresh scope
func (ts *TokenServiceImpl) CreateRefreshToken(subject string) (string, error) {
	return ts.generate(subject, ScopeRefresh, ts.refreshTokenTTL)
}

// CreateEmailToken signs a confirmation token carrying only the email subject
func (ts *TokenServiceImpl) CreateEmailToken(subject string) (string, error) {
	return ts.generate(subject, ScopeEmail, ts.emailTokenTTL)
}

// DecodeRefreshToken verifies a refresh scoped token and returns its subject
func (ts *TokenServiceImpl) DecodeRefreshToken(token string) (string, error) {
	return ts.decode(token, ScopeRefresh)
}

// DecodeEmailToken verifies an email scoped token and returns its subject
func (ts *TokenServiceImpl) DecodeEmailToken(token string) (string, error) {
	return ts.decode(token, ScopeEmail)
}

func (ts *TokenServiceImpl) generate(subject, scope string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenScope: scope,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenServiceImpl) decode(token, scope string) (string, error) {
	claims, err := ts.Validate(token)
	if err != nil {
		return "", err
	}

	if !claims.HasScope(scope) {
		ts.logger.Debug("TokenService decode scope mismatch", "want", scope, "got", claims.Scope())
		return "", ErrTokenScope
	}

	return claims.Subject(), nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
