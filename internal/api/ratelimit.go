package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a per-key sliding window limiter. Keys come from KeyFunc
// (client IP by default, voter ID for casts).
type RateLimiter struct {
	mu       sync.RWMutex
	windows  map[string]*slidingWindow
	limit    int
	window   time.Duration
	keyFunc  func(r *http.Request) string
	cleanupT *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

// slidingWindow tracks requests in a sliding time window
type slidingWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Limit   int           // Max requests per window
	Window  time.Duration // Time window
	KeyFunc func(r *http.Request) string
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = GetClientIP
	}

	rl := &RateLimiter{
		windows: make(map[string]*slidingWindow),
		limit:   cfg.Limit,
		window:  cfg.Window,
		keyFunc: cfg.KeyFunc,
		stopCh:  make(chan struct{}),
	}

	// Idle keys are dropped once per window
	rl.cleanupT = time.NewTicker(cfg.Window)
	go rl.cleanup()

	return rl
}

// cleanup periodically removes expired entries
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupT.C:
			rl.mu.Lock()
			now := time.Now()
			for key, sw := range rl.windows {
				sw.mu.Lock()
				sw.pruneOld(now, rl.window)
				if len(sw.timestamps) == 0 {
					delete(rl.windows, key)
				}
				sw.mu.Unlock()
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			rl.cleanupT.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call multiple times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(r *http.Request) bool {
	key := rl.keyFunc(r)
	now := time.Now()

	rl.mu.Lock()
	sw, exists := rl.windows[key]
	if !exists {
		sw = &slidingWindow{}
		rl.windows[key] = sw
	}
	rl.mu.Unlock()

	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.pruneOld(now, rl.window)
	if len(sw.timestamps) >= rl.limit {
		return false
	}
	sw.timestamps = append(sw.timestamps, now)
	return true
}

// pruneOld removes timestamps older than the window
func (sw *slidingWindow) pruneOld(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(sw.timestamps) && sw.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		sw.timestamps = sw.timestamps[i:]
	}
}

// Middleware returns HTTP middleware for rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP returns r.RemoteAddr without its port. RealIP has already
// applied X-Real-IP / X-Forwarded-For; reading them again here would let a
// client pick its own rate-limit key.
func GetClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may not have a port (e.g. unix socket)
		return r.RemoteAddr
	}
	return host
}

// VoterKey keys rate limits by the X-Voter-ID header, falling back to client IP
func VoterKey(r *http.Request) string {
	if id := r.Header.Get(voterHeader); id != "" {
		return "voter:" + id
	}
	return "ip:" + GetClientIP(r)
}

// RateLimiters holds all rate limiters for the application
type RateLimiters struct {
	Global *RateLimiter
	Cast   *RateLimiter
	Digest *RateLimiter
}

// NewRateLimiters creates the standard rate limiters
func NewRateLimiters() *RateLimiters {
	return &RateLimiters{
		// Global: 100 requests per minute per IP
		Global: NewRateLimiter(RateLimitConfig{
			Limit:   100,
			Window:  1 * time.Minute,
			KeyFunc: GetClientIP,
		}),
		// Cast: 30 poll votes per minute per voter
		Cast: NewRateLimiter(RateLimitConfig{
			Limit:   30,
			Window:  1 * time.Minute,
			KeyFunc: VoterKey,
		}),
		// Digest: 10 per minute per IP (resolves and groups a whole window)
		Digest: NewRateLimiter(RateLimitConfig{
			Limit:   10,
			Window:  1 * time.Minute,
			KeyFunc: GetClientIP,
		}),
	}
}

// Stop stops all rate limiter cleanup goroutines
func (rls *RateLimiters) Stop() {
	rls.Global.Stop()
	rls.Cast.Stop()
	rls.Digest.Stop()
}

// DigestSemaphore caps concurrent digest passes system-wide
var DigestSemaphore = make(chan struct{}, 4)

// DigestGuardMiddleware applies the digest rate limit and the concurrency
// semaphore. Returns 429 if rate limited, 503 if all digest slots are busy.
func DigestGuardMiddleware(digestRL *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !digestRL.Allow(r) {
				w.Header().Set("Retry-After", "60")
				respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "digest rate limit exceeded (max 10/min)"})
				return
			}

			select {
			case DigestSemaphore <- struct{}{}:
				defer func() { <-DigestSemaphore }()
			default:
				respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "digest capacity full, try again shortly"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
