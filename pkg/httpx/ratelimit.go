package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines per-client rate limiting parameters.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

var (
	// StrictLimit is for credential endpoints: brute-force protection
	// beats convenience there.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// LenientLimit is for token-bearing endpoints that are already
	// authenticated by other means.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// visitor tracks one client's limiter; stale entries are pruned so the
// map does not grow with every address that ever connected.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimitConfig
	pruned   time.Time
}

const visitorTTL = 10 * time.Minute

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.pruned) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.pruned = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		limit := rate.Every(l.cfg.Window / time.Duration(l.cfg.RequestsPerWindow))
		v = &visitor{limiter: rate.NewLimiter(limit, l.cfg.Burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// RateLimitByIP limits requests per client IP with the given profile.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	l := &ipLimiter{visitors: make(map[string]*visitor), cfg: cfg, pruned: time.Now()}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !l.allow(ip) {
				w.Header().Set("Retry-After", "60")
				rejection := &Error{
					StatusCode: http.StatusTooManyRequests,
					Code:       "rate_limited",
					Message:    "too many requests, slow down",
				}
				rejection.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
