// internal/middleware/rate_limit.go
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/averbacoes/backoffice/internal/config"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleVisitor is how long a caller may stay quiet before its limiter is dropped.
const idleVisitor = 3 * time.Minute

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller. Callers are sessions once
// authenticated and client IPs before that.
type RateLimiter struct {
	mtx     sync.Mutex
	callers map[string]*caller
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		limit:   limit,
		burst:   burst,
	}

	go rl.evictIdle(time.NewTicker(time.Minute))

	return rl
}

func (rl *RateLimiter) evictIdle(ticker *time.Ticker) {
	for now := range ticker.C {
		rl.mtx.Lock()
		for key, v := range rl.callers {
			if now.Sub(v.lastSeen) > idleVisitor {
				delete(rl.callers, key)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.callers[key]
	if !exists {
		v = &caller{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.callers[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func callerKey(c *gin.Context) string {
	if sess := SessionFromContext(c); sess != nil {
		return "session:" + sess.ID().String()
	}
	return "ip:" + c.ClientIP()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(callerKey(c)).Allow() {
			if rl.limit > 0 {
				wait := math.Ceil(1/float64(rl.limit) - 1e-9)
				c.Header("Retry-After", strconv.Itoa(int(wait)))
			}
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				i18n.T(utils.GetLangFromContext(c), i18n.KeyRateLimitExceeded), nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimits groups the limiters of each route class.
type RateLimits struct {
	General *RateLimiter
	Auth    *RateLimiter
	Upload  *RateLimiter
}

func NewRateLimits(cfg config.RateLimitConfig) *RateLimits {
	return &RateLimits{
		General: NewRateLimiter(rate.Limit(positive(cfg.GeneralPerSecond, 10)), positive(cfg.GeneralBurst, 20)),
		Auth:    NewRateLimiter(perMinute(positive(cfg.AuthPerMinute, 5)), positive(cfg.AuthPerMinute, 5)),
		Upload:  NewRateLimiter(perMinute(positive(cfg.UploadPerMinute, 10)), positive(cfg.UploadPerMinute, 10)),
	}
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
