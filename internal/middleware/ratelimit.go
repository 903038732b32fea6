package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	general  *rate.Limiter
	mutation *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a per-client budget to every request and a
// tighter one to lifecycle mutations (soft delete, restore, purge).
type RateLimitMiddleware struct {
	generalRPM  int
	mutationRPM int
	mu          sync.Mutex
	clients     map[string]*clientLimiter
}

// NewRateLimitMiddleware treats a non-positive generalRPM as unlimited.
func NewRateLimitMiddleware(generalRPM int, mutationRPM int) *RateLimitMiddleware {
	if mutationRPM <= 0 {
		mutationRPM = 30
	}

	return &RateLimitMiddleware{
		generalRPM:  generalRPM,
		mutationRPM: mutationRPM,
		clients:     map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := m.getLimiter(extractClientIP(r))

		target := limiter.general
		if isLifecycleMutation(r) {
			target = limiter.mutation
		}

		if target != nil && !target.Allow() {
			w.Header().Set("Retry-After", "60")
			writeErrorJSON(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isLifecycleMutation(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return false
	}

	path := strings.ToLower(r.URL.Path)
	return strings.HasPrefix(path, "/api/v1/recycle-bin") || strings.HasPrefix(path, "/api/v1/content")
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, exists := m.clients[clientIP]; exists {
		limiter.lastSeen = time.Now()
		m.gcLocked()
		return limiter
	}

	created := &clientLimiter{
		mutation: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.mutationRPM)), m.mutationRPM),
		lastSeen: time.Now(),
	}
	if m.generalRPM > 0 {
		created.general = rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.generalRPM)), m.generalRPM)
	}
	m.clients[clientIP] = created
	m.gcLocked()

	return created
}

func (m *RateLimitMiddleware) gcLocked() {
	if len(m.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, limiter := range m.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

func extractClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}
