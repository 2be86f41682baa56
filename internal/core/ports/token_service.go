package ports

import (
	"time"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenValidator verifies bearer tokens. It is all the boundary middleware needs.
type TokenValidator interface {
	Validate(token string) (*TokenClaims, error)
}

// TokenService mints and verifies bearer tokens.
type TokenService interface {
	TokenValidator
	Issue(subject string, role domain.Role) (token string, expiresAt time.Time, err error)
	// ValidateFor is Validate plus a check that the token was issued to expectedSubject.
	ValidateFor(token, expectedSubject string) (*TokenClaims, error)
	// ExtractSubject reads the subject without verifying the token.
	// The result must not be used as proof of identity.
	ExtractSubject(token string) (string, error)
}
