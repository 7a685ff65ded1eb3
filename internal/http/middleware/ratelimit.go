package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys signed-in callers by user id and everyone else by client
// IP. The prefixes keep the two namespaces apart ("user:42", "ip:203.0.113.7").
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid, ok := UserID(c); ok {
			return "user:" + strconv.FormatUint(uint64(uid), 10)
		}
		return "ip:" + c.ClientIP()
	}
}

const (
	bucketIdleTTL  = 10 * time.Minute
	sweepEvery     = 5000 // lookups between idle-bucket sweeps
	maxRetryAfterS = 3600
)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-process token-bucket limiter with one bucket per key.
// Admins and idempotent replays are not limited. Buckets idle for longer than
// bucketIdleTTL are swept during lookups.
type RateLimiter struct {
	limit rate.Limit
	burst int
	key   KeyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups int
	idleTTL time.Duration
	now     func() time.Time
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (at least 1).
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if key == nil {
		key = KeyByUserOrIP()
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		key:     key,
		buckets: make(map[string]*bucket),
		idleTTL: bucketIdleTTL,
		now:     time.Now,
	}
}

// Len reports how many buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep first so a stale bucket for this very key starts over full.
	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// retryAfter is the whole number of seconds until one token is back.
func (rl *RateLimiter) retryAfter() string {
	if rl.limit <= 0 {
		return strconv.Itoa(maxRetryAfterS)
	}
	s := int(math.Ceil(1 / float64(rl.limit)))
	switch {
	case s < 1:
		s = 1
	case s > maxRetryAfterS:
		s = maxRetryAfterS
	}
	return strconv.Itoa(s)
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay that should not consume a token.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// Handler enforces the limit. A denied request gets 429 with Retry-After and
// the standard error body (code "rate_limited").
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || IsAdmin(c) {
			c.Next()
			return
		}

		key := rl.key(c)
		if rl.limiterFor(key).Allow() {
			c.Next()
			return
		}

		LoggerFrom(c).Warn().Str("bucket", key).Msg("rate limit exceeded")
		c.Header("Retry-After", rl.retryAfter())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":    false,
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
