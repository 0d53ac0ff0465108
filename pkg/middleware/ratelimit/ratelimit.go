package ratelimit

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
	"github.com/noah-isme/intervention-planner-api/pkg/response"
)

// KeyFunc picks the bucket a request is charged against.
type KeyFunc func(*gin.Context) string

// ByClientIP keys buckets on the caller's address.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// Limiter holds one token bucket per key.
type Limiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	key     KeyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	sweptAt time.Time
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a limiter allowing rps sustained requests with the given burst per key.
func New(rps float64, burst int, key KeyFunc) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	if key == nil {
		key = ByClientIP
	}
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		key:     key,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow charges one token to key and reports whether the request may proceed,
// plus how long to wait when it may not.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.sweptAt) < l.idleTTL {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
	l.sweptAt = now
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Allow(l.key(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
