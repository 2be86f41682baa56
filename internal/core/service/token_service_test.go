package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenService_IssueAndValidate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokens(t, clock.Now)

	token, expiresAt, err := svc.Issue("alice", domain.RoleManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(clock.t.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	clock.t = clock.t.Add(59 * time.Minute)
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate before expiry: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != domain.RoleManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_ValidateFor(t *testing.T) {
	svc := newTestTokens(t, time.Now)
	token, _, err := svc.Issue("alice", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.ValidateFor(token, "alice"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if _, err := svc.ValidateFor(token, "bob"); !errors.Is(err, domain.ErrSubjectMismatch) {
		t.Fatalf("expected ErrSubjectMismatch, got %v", err)
	}
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	svc := newTestTokens(t, time.Now)
	other, err := NewTokenService("another-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	token, _, err := other.Issue("mallory", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newTestTokens(t, time.Now)

	claims := tokenClaims{
		Role: string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_RejectsUnknownRoleClaim(t *testing.T) {
	svc := newTestTokens(t, time.Now)
	token, _, err := svc.Issue("alice", domain.Role("ROOT"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_ExtractSubject(t *testing.T) {
	clock := &fakeClock{t: time.Now().Add(-48 * time.Hour)}
	svc := newTestTokens(t, clock.Now)
	token, _, err := svc.Issue("alice", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Expired tokens still expose their subject; only full validation rejects them.
	subject, err := svc.ExtractSubject(token)
	if err != nil || subject != "alice" {
		t.Fatalf("expected alice, got %q (%v)", subject, err)
	}

	if _, err := svc.ExtractSubject("not.a.token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestNewTokenService_RequiresKey(t *testing.T) {
	if _, err := NewTokenService("", "", 0); err == nil {
		t.Fatal("expected error for empty signing key")
	}
}
