// Package ratelimit is a fixed-window admit/reject gate keyed by client
// identity, backed by Redis so multiple instances share one budget.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		redis:  client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Middleware admits or rejects the request. Redis failures admit the
// request; the gate degrades to open rather than blocking checkout.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.windowKey(clientIdentity(r))

		count, err := l.redis.Incr(r.Context(), key).Result()
		if err != nil {
			l.logger.Error("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count == 1 {
			if err := l.redis.Expire(r.Context(), key, l.window).Err(); err != nil {
				l.logger.Error("failed to set rate limit window", "error", err)
			}
		}

		if count > int64(l.limit) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"}); err != nil {
				l.logger.Error("failed to encode response", "error", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) windowKey(identity string) string {
	window := time.Now().Unix() / int64(l.window.Seconds())
	return "ratelimit:" + identity + ":" + strconv.FormatInt(window, 10)
}

func clientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
