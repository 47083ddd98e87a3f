package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/placefeed/pkg/response"
)

const (
	// 客户端 IP 由请求方决定，限流表必须有上界
	limiterMaxClients = 4096
	limiterIdleTTL    = 3 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters 按客户端 IP 的令牌桶表。闲置条目在表满时按
// lastSeen 清扫，全都活跃时淘汰最久未见的那个。
type ipLimiters struct {
	mu         sync.Mutex
	clients    map[string]*ipLimiter
	qps        float64
	burst      int
	idleTTL    time.Duration
	maxClients int
}

func newIPLimiters(qps float64, burst int) *ipLimiters {
	return &ipLimiters{
		clients:    make(map[string]*ipLimiter),
		qps:        qps,
		burst:      burst,
		idleTTL:    limiterIdleTTL,
		maxClients: limiterMaxClients,
	}
}

func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.sweepLocked(now)
		}
		c = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(l.qps), l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (l *ipLimiters) sweepLocked(now time.Time) {
	var oldestIP string
	var oldestSeen time.Time
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, ip)
			continue
		}
		if oldestIP == "" || c.lastSeen.Before(oldestSeen) {
			oldestIP, oldestSeen = ip, c.lastSeen
		}
	}
	if len(l.clients) >= l.maxClients && oldestIP != "" {
		delete(l.clients, oldestIP)
	}
}

// RateLimit 按客户端IP的令牌桶限流。
// 限流器惰性创建、闲置回收；超限直接 429，不排队。
func RateLimit(qps float64, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(qps, burst)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, response.Response{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
