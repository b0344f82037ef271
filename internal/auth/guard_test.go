package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGuard(client, "admin", "secret", time.Hour, logger)
}

func login(t *testing.T, guard *Guard) (*http.Cookie, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"secret"}`))
	rec := httptest.NewRecorder()
	guard.HandleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body["csrfToken"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookie, cookies[0].Name)

	return cookies[0], body["csrfToken"]
}

func protectedHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestGuard_Login(t *testing.T) {
	t.Run("issues session and token", func(t *testing.T) {
		guard := newTestGuard(t)
		cookie, token := login(t, guard)
		assert.NotEmpty(t, cookie.Value)
		assert.NotEmpty(t, token)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		guard := newTestGuard(t)

		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
		rec := httptest.NewRecorder()
		guard.HandleLogin(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestGuard_Middleware(t *testing.T) {
	t.Run("missing cookie is 401", func(t *testing.T) {
		guard := newTestGuard(t)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
		assert.False(t, *called)
	})

	t.Run("unknown session is 401", func(t *testing.T) {
		guard := newTestGuard(t)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("GET passes without token", func(t *testing.T) {
		guard := newTestGuard(t)
		cookie, _ := login(t, guard)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("non-GET without token is 403", func(t *testing.T) {
		guard := newTestGuard(t)
		cookie, _ := login(t, guard)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodDelete, "/admin/orders/1", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or missing token")
		assert.False(t, *called)
	})

	t.Run("non-GET with mismatched token is 403", func(t *testing.T) {
		guard := newTestGuard(t)
		cookie, _ := login(t, guard)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodPut, "/admin/orders/1", nil)
		req.AddCookie(cookie)
		req.Header.Set(CSRFHeader, "forged")
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("non-GET with matching token passes", func(t *testing.T) {
		guard := newTestGuard(t)
		cookie, token := login(t, guard)
		next, called := protectedHandler()

		req := httptest.NewRequest(http.MethodPost, "/admin/orders", nil)
		req.AddCookie(cookie)
		req.Header.Set(CSRFHeader, token)
		rec := httptest.NewRecorder()
		guard.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})
}

func TestGuard_Logout(t *testing.T) {
	guard := newTestGuard(t)
	cookie, _ := login(t, guard)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	guard.HandleLogout(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	// The revoked session no longer passes the guard.
	next, called := protectedHandler()
	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	guard.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}
