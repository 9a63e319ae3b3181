package transport

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ipRateLimiter tracks the last connection time per IP to prevent abuse
type ipRateLimiter struct {
	mu        sync.Mutex
	cooldown  time.Duration
	times     map[string]time.Time
	lastSweep time.Time
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	return &ipRateLimiter{cooldown: cooldown, times: make(map[string]time.Time)}
}

// allow reports whether ip may connect at now, and records the attempt
func (rl *ipRateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// stale entries are dropped at most once per minute
	if now.Sub(rl.lastSweep) >= time.Minute {
		rl.lastSweep = now
		for k, t := range rl.times {
			if now.Sub(t) >= rl.cooldown {
				delete(rl.times, k)
			}
		}
	}

	if last, ok := rl.times[ip]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	rl.times[ip] = now
	return true
}

// clientIP prefers the first X-Forwarded-For hop for clients behind a
// reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
