package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/api/metrics"
	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	metrics.UsersRegisteredTotal.WithLabelValues(string(user.Role)).Inc()

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "user registered",
		User: userResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
		},
	})
}

// Login authenticates a user and returns a bearer token.
// Unknown users and wrong passwords get the same 401 response.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return domain.ErrInvalidCredentials
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return domain.ErrInvalidCredentials
	default:
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
	})
}

// Validate checks a token against the freshly loaded user record.
//
// @Summary      Validate a token
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Bearer token"
// @Success      200    {object}  validateResponse
// @Failure      401    {object}  validateResponse
// @Router       /auth/validate [get]
func (h *AuthHandler) Validate(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		token = bearerToken(c)
	}
	if token == "" {
		return c.JSON(http.StatusUnauthorized, validateResponse{Valid: false, Error: "missing token"})
	}

	claims, err := h.authService.ValidateToken(c.Request().Context(), token)
	if err != nil && !isTokenError(err) {
		return err
	}
	metrics.TokenValidationsTotal.WithLabelValues(metrics.TokenResult(err)).Inc()
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, domain.ErrTokenExpired) {
			msg = "token expired"
		}
		return c.JSON(http.StatusUnauthorized, validateResponse{Valid: false, Error: msg})
	}

	return c.JSON(http.StatusOK, validateResponse{
		Valid:   true,
		Subject: claims.Subject,
		Role:    string(claims.Role),
	})
}

// ListUsers returns every registered user for the assignee picker.
//
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userSummary
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	if _, err := ctxSubject(c); err != nil {
		return err
	}

	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{ID: u.ID, Username: u.Username, Role: string(u.Role)})
	}
	return c.JSON(http.StatusOK, out)
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func isTokenError(err error) bool {
	return errors.Is(err, domain.ErrTokenMalformed) ||
		errors.Is(err, domain.ErrTokenExpired) ||
		errors.Is(err, domain.ErrSubjectMismatch)
}
