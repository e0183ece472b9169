package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleTTL drops limiters of clients not seen for this long.
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterData holds one limiter per client ip
type rateLimiterData struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

func (d *rateLimiterData) limiter(ip string, now time.Time) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastGC) > d.cfg.IdleTTL {
		for key, v := range d.visitors {
			if now.Sub(v.lastSeen) > d.cfg.IdleTTL {
				delete(d.visitors, key)
			}
		}
		d.lastGC = now
	}

	v, ok := d.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(d.cfg.RequestsPerSecond), d.cfg.Burst)}
		d.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// NewRateLimiterMiddleware creates a new per-client rate limiter middleware
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	data := &rateLimiterData{cfg: config, visitors: make(map[string]*visitor), lastGC: time.Now()}

	return func(c *gin.Context) {
		if !data.limiter(c.ClientIP(), time.Now()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{Message: MsgTooManyRequest})
			return
		}
		c.Next()
	}
}
