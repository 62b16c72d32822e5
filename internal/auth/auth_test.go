package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func echoIdentity(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", id)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)

	token, err := a.IssueToken("user1", "u@example.com", false, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	a.Middleware(echoIdentity(t)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "user1", rr.Header().Get("X-User"))
}

func TestMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	other, err := NewAuthenticator("different-secret")
	require.NoError(t, err)
	forged, err := other.IssueToken("user1", "", true, time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rr = httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)

	token, err := a.IssueToken("user1", "", false, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	a.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdmin(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)

	adminOnly := a.Middleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	userToken, err := a.IssueToken("user1", "", false, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rr := httptest.NewRecorder()
	adminOnly.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	adminToken, err := a.IssueToken("admin1", "", true, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr = httptest.NewRecorder()
	adminOnly.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
