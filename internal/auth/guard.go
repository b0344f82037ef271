// Package auth implements the admin guard: a Redis-backed session cookie
// paired with an anti-forgery token that must accompany every non-GET
// request. The rest of the system treats this as an opaque
// "is this caller an authenticated admin" check.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionCookie = "kedai_admin"
	CSRFHeader    = "X-CSRF-Token"

	sessionKeyPrefix = "session:"
)

type Guard struct {
	redis      *redis.Client
	username   string
	password   string
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewGuard(client *redis.Client, username, password string, sessionTTL time.Duration, logger *slog.Logger) *Guard {
	return &Guard{
		redis:      client,
		username:   username,
		password:   password,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin issues a session cookie and its anti-forgery token. The
// token is returned in the body; the client echoes it in the CSRF header.
func (g *Guard) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(g.password)) == 1
	if !userOK || !passOK {
		g.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sessionID := uuid.New().String()
	csrfToken := uuid.New().String()

	if err := g.redis.Set(r.Context(), sessionKeyPrefix+sessionID, csrfToken, g.sessionTTL).Err(); err != nil {
		g.logger.Error("failed to store session", "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(g.sessionTTL.Seconds()),
	})

	g.logger.Info("admin logged in")
	g.writeJSON(w, http.StatusOK, map[string]string{"csrfToken": csrfToken})
}

func (g *Guard) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := g.redis.Del(r.Context(), sessionKeyPrefix+cookie.Value).Err(); err != nil {
			g.logger.Error("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Middleware rejects requests without a valid session with 401, and
// non-GET requests without the matching anti-forgery token with 403.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			g.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		csrfToken, err := g.redis.Get(r.Context(), sessionKeyPrefix+cookie.Value).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				g.writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			g.logger.Error("failed to load session", "error", err)
			g.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if r.Method != http.MethodGet {
			header := r.Header.Get(CSRFHeader)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(csrfToken)) != 1 {
				g.writeError(w, http.StatusForbidden, "invalid or missing token")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

func (g *Guard) writeError(w http.ResponseWriter, status int, message string) {
	g.writeJSON(w, status, map[string]string{"error": message})
}
