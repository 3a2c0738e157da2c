package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"mundox-portal-bff/internal/model"
	"mundox-portal-bff/internal/security"
	"mundox-portal-bff/internal/store"
)

// burstIdleTTL is how long an IP's bucket survives without traffic.
const burstIdleTTL = 10 * time.Minute

// burstKey is the security event key of burst limiter rejections.
const burstKey = "burst"

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// limited is set from the first rejection until a request is allowed again.
	limited bool
}

// BurstLimiter keeps a token bucket per client IP. It smooths bursts in front
// of the fixed-window security limiter.
type BurstLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	r         rate.Limit
	b         int
	nextSweep time.Time
}

// NewBurstLimiter creates a limiter refilling r tokens per second up to b.
func NewBurstLimiter(r rate.Limit, b int) *BurstLimiter {
	return &BurstLimiter{buckets: make(map[string]*bucket), r: r, b: b}
}

// Reserve takes one token for ip. It returns zero when the request may
// proceed, otherwise how long the caller should wait. first reports the
// first rejection of a run of rejections.
func (l *BurstLimiter) Reserve(ip string, now time.Time) (wait time.Duration, first bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for key, bk := range l.buckets {
			if now.Sub(bk.lastSeen) > burstIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.nextSweep = now.Add(burstIdleTTL)
	}

	bk, ok := l.buckets[ip]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[ip] = bk
	}
	bk.lastSeen = now

	delay := time.Second
	if res := bk.limiter.ReserveN(now, 1); res.OK() {
		delay = res.DelayFrom(now)
		if delay > 0 {
			res.CancelAt(now)
		}
	}
	if delay == 0 {
		bk.limited = false
		return 0, false
	}
	first = !bk.limited
	bk.limited = true
	return delay, first
}

// Len is the number of tracked IPs.
func (l *BurstLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimiter is a middleware for IP-based burst limiting. The first
// rejection of each burst is recorded as a rate_limited security event.
func RateLimiter(r rate.Limit, b int, st store.Store, log *zap.Logger) gin.HandlerFunc {
	limiter := NewBurstLimiter(r, b)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		wait, first := limiter.Reserve(ip, time.Now())
		if wait == 0 {
			c.Next()
			return
		}

		if first {
			log.Warn("Burst limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path), zap.Duration("wait", wait))
			event := &model.SecurityEvent{
				At:     time.Now().UTC(),
				IP:     ip,
				Kind:   string(security.KindRateLimited),
				Key:    burstKey,
				Detail: "burst limit exceeded on " + c.Request.URL.Path,
			}
			if err := st.RecordSecurityEvent(c.Request.Context(), event); err != nil {
				log.Error("Failed to record security event", zap.Error(err))
			}
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		AbortJSON(c, http.StatusTooManyRequests, MsgTooManyRequests)
	}
}
