package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Auth (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// Signed provider callbacks, which arrive in bursts from shared IPs
	limitWebhook = rate.Limit(50)
	burstWebhook = 200

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Catalog browsing
	limitCatalog = rate.Limit(20)
	burstCatalog = 40
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

var strictPaths = map[string]bool{
	"/api/auth/login":    true,
	"/api/auth/register": true,
}

const webhookPath = "/api/payments/card/webhook"

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter starts the background cleanup loop; call Stop on shutdown.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		rl.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(visitorTTL)
		}
	}
}

func (rl *RateLimiter) evictIdle(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects requests over the caller's quota with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := resolveRateTier(r)

		key := fmt.Sprintf("%s:%s", identityKey(r), tier)

		if !rl.getVisitor(key, limit, burst).Allow() {
			writeJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityKey prefers the authenticated user, then a client-supplied device
// id, then the remote IP.
func identityKey(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if r.URL.Path == webhookPath {
		return limitWebhook, burstWebhook, "webhook"
	}

	if strictPaths[r.URL.Path] {
		return limitStrict, burstStrict, "strict"
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/products") {
		return limitCatalog, burstCatalog, "catalog"
	}

	return limitGeneral, burstGeneral, "general"
}
