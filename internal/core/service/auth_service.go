package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// timingPassword is hashed once at startup so that a login for an unknown
// username performs the same bcrypt comparison as one with a wrong password.
const timingPassword = "timing-equaliser"

// AuthService implements registration, login and token validation.
type AuthService struct {
	repo      ports.UserRepository
	tokens    ports.TokenService
	hasher    PasswordHasher
	logger    zerolog.Logger
	dummyHash string
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, hasher PasswordHasher, logger zerolog.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(timingPassword)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	case len(in.Password) > maxPasswordBytes:
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	role := domain.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.logger.Info().Str("username", username).Msg("registration rejected: username taken")
		}
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and issues a token. An unknown username
// yields domain.ErrUserNotFound and a wrong password domain.ErrInvalidCredentials;
// callers facing clients should not distinguish the two.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Verify(s.dummyHash, password)
			s.logger.Warn().Str("username", username).Str("reason", "unknown_user").Msg("login failed")
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.logger.Warn().Str("username", username).Str("reason", "bad_password").Msg("login failed")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("stored password verifier unusable")
		return nil, fmt.Errorf("login: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken verifies token against the current record of its subject.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*ports.TokenClaims, error) {
	subject, err := s.tokens.ExtractSubject(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrTokenMalformed)
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}

	return s.tokens.ValidateFor(token, user.Username)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
