package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcardhq/bcard-api/pkg/auth"
	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/rbac"
)

const testSecret = "test-secret"

func newAuthn() (*middleware.Authenticator, *auth.TokenService, *auth.CookieBaker) {
	tokens := auth.NewTokenService(testSecret)
	cookie := auth.NewCookieBaker("test-app-key", false)
	return middleware.NewAuthenticator(tokens, cookie), tokens, cookie
}

// echoHandler writes the authenticated user id from the context.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(middleware.UserIDFromCtx(r.Context())))
}

func sessionCookie(t *testing.T, tokens *auth.TokenService, cookie *auth.CookieBaker, userID, role string) *http.Cookie {
	t.Helper()
	token, err := tokens.Issue(userID, "Test User", role)
	require.NoError(t, err)
	baked, err := cookie.Bake(token)
	require.NoError(t, err)
	return baked
}

func TestRequireMissingCookie(t *testing.T) {
	authn, _, _ := newAuthn()
	handler := authn.Require(http.HandlerFunc(echoHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"Authentication invalid"}`, rec.Body.String())
}

func TestRequireValidCookie(t *testing.T) {
	authn, tokens, cookie := newAuthn()
	handler := authn.Require(http.HandlerFunc(echoHandler))

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.AddCookie(sessionCookie(t, tokens, cookie, "user-42", "user"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestRequireTamperedCookie(t *testing.T) {
	authn, tokens, cookie := newAuthn()
	handler := authn.Require(http.HandlerFunc(echoHandler))

	baked := sessionCookie(t, tokens, cookie, "user-42", "user")
	baked.Value = baked.Value[:len(baked.Value)-2] + "zz"

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.AddCookie(baked)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireExpiredToken(t *testing.T) {
	authn, _, cookie := newAuthn()
	handler := authn.Require(http.HandlerFunc(echoHandler))

	claims := auth.Claims{
		UserID: "user-42",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	baked, err := cookie.Bake(expired)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.AddCookie(baked)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHasRoleGate(t *testing.T) {
	authn, tokens, cookie := newAuthn()
	handler := authn.Require(rbac.HasRole("admin")(http.HandlerFunc(echoHandler)))

	// regular user is rejected with the same 401 as an unauthenticated call
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(sessionCookie(t, tokens, cookie, "user-42", "user"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"Authentication invalid"}`, rec.Body.String())

	// admin passes
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(sessionCookie(t, tokens, cookie, "admin-1", "admin"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
