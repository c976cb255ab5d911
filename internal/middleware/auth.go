package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/motominder/motominder/internal/auth"
	"github.com/motominder/motominder/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// UserContextKey holds the validated claims for the request.
const UserContextKey contextKey = "claims"

// publicPaths are the only routes served without a token: obtaining an
// account, obtaining a token, and the health probe. Everything else is
// owner-scoped and needs valid claims.
var publicPaths = map[string]bool{
	"/api/auth/login":    true,
	"/api/auth/register": true,
	"/health":            true,
}

// AuthMiddleware validates bearer tokens and puts the owner's claims on the
// request context. Handlers never read the Authorization header themselves;
// the claims in the context are the only identity source.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates the authentication middleware.
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate rejects requests to protected routes that do not carry a
// valid bearer token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(header)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the validated claims from a request context.
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// RateLimiter caps requests per client address over a fixed window.
type RateLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*clientWindow
}

type clientWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing max requests per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		windows: make(map[string]*clientWindow),
	}
}

// Limit rejects requests from clients that exhausted their window.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientAddr(r), time.Now()) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(addr string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cw, ok := l.windows[addr]
	if !ok || now.Sub(cw.start) >= l.window {
		l.windows[addr] = &clientWindow{start: now, count: 1}
		return true
	}
	if cw.count >= l.max {
		return false
	}
	cw.count++
	return true
}

// clientAddr identifies the client, preferring proxy headers over the raw
// remote address.
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i != -1 {
		addr = addr[:i]
	}
	return addr
}
