package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, userID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token := signToken(t, "test-secret", "user-42", "provider")

	rec, c := runMiddleware(t, JWTMiddleware, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", c.Get("user_id"))
	assert.Equal(t, "provider", c.Get("role"))
}

func TestJWTMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rec, _ := runMiddleware(t, JWTMiddleware, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runMiddleware(t, JWTMiddleware, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrongKey := signToken(t, "other-secret", "user-42", "user")
	rec, _ = runMiddleware(t, JWTMiddleware, "Bearer "+wrongKey)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTAllowsAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rec, c := runMiddleware(t, OptionalJWT, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get("user_id"))

	token := signToken(t, "test-secret", "user-7", "user")
	rec, c = runMiddleware(t, OptionalJWT, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", c.Get("user_id"))
}
