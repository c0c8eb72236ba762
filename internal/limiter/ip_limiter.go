// Package limiter throttles requests per client IP with a token bucket per address.
package limiter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cleanupInterval = 3 * time.Minute

type IPRateLimiter struct {
	logger *slog.Logger

	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
}

func NewIPRateLimiter(logger *slog.Logger, r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		logger: logger.With("component", "ip_limiter"),
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (that *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	that.mu.RLock()
	limiter, exists := that.limits[ip]
	that.mu.RUnlock()

	if exists {
		return limiter
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	limiter, exists = that.limits[ip]
	if !exists {
		limiter = rate.NewLimiter(that.r, that.b)
		that.limits[ip] = limiter
	}

	return limiter
}

// Run drops idle buckets until ctx is done.
func (that *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			that.cleanUp(now)
		}
	}
}

// cleanUp removes every bucket that has refilled completely.
func (that *IPRateLimiter) cleanUp(now time.Time) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	removed := 0
	for ip, limiter := range that.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(that.limits, ip)
			removed++
		}
	}

	that.logger.Debug("rate limiter cleanup", "removed", removed, "active", len(that.limits))

	return removed
}

// Middleware answers 429 once the client IP runs out of tokens.
func (that *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		ip := ClientIP(req)

		if !that.GetLimiter(ip).Allow() {
			that.logger.Warn("request rejected by rate limiter", "ip", ip, "path", req.URL.Path)
			http.Error(writer, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(writer, req)
	})
}

func ClientIP(req *http.Request) string {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		ip = req.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}

	return ip
}
