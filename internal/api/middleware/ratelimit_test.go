package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(3)
	e.POST("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, rl.Middleware())

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1").Code, "request %d", i)
	}

	blocked := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))

	// Other clients keep their own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestNewRateLimiter_Default(t *testing.T) {
	assert.Equal(t, defaultLoginRPM, NewRateLimiter(0).rpm)
}
