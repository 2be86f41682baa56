package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

const (
	defaultTokenTTL    = 24 * time.Hour
	defaultTokenIssuer = "taskflow-identity"
)

// tokenClaims is the JWT payload: registered claims plus the role claim.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 bearer tokens. It holds only the
// signing key, issuer, TTL and clock.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a TokenService. An empty signing key is rejected.
func NewTokenService(signingKey, issuer string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if signingKey == "" {
		return nil, errors.New("token service: signing key is required")
	}
	if issuer == "" {
		issuer = defaultTokenIssuer
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &TokenService{signingKey: []byte(signingKey), issuer: issuer, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL reports the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(subject string, role domain.Role) (string, time.Time, error) {
	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Validate(token string) (*ports.TokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	out := &ports.TokenClaims{Subject: claims.Subject, Role: role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *TokenService) ValidateFor(token, expectedSubject string) (*ports.TokenClaims, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject != expectedSubject {
		return nil, domain.ErrSubjectMismatch
	}
	return claims, nil
}

func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}
	return claims.Subject, nil
}
