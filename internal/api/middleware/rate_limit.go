package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-assistant/internal/pkg/common"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建限流器，window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) idleSince(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return now.Sub(rl.lastTime)
}

// clientLimiters 每個來源 IP 一個限流器
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
	requests int
	window   time.Duration
}

// maxIdleLimiters 超過此數量時清掉閒置的限流器
const maxIdleLimiters = 1024

func (cl *clientLimiters) get(key string) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	rl, ok := cl.limiters[key]
	if !ok {
		if len(cl.limiters) >= maxIdleLimiters {
			cl.sweep(time.Now())
		}
		rl = NewRateLimiter(cl.requests, cl.window)
		cl.limiters[key] = rl
	}
	return rl
}

// sweep 移除超過一個 window 未使用的限流器
func (cl *clientLimiters) sweep(now time.Time) {
	for k, rl := range cl.limiters {
		if rl.idleSince(now) > cl.window {
			delete(cl.limiters, k)
		}
	}
}

func newClientLimiters(requests int, window time.Duration) *clientLimiters {
	if window <= 0 {
		window = time.Minute
	}
	return &clientLimiters{
		limiters: make(map[string]*RateLimiter),
		requests: requests,
		window:   window,
	}
}

// RateLimit 依來源 IP 限流
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	clients := newClientLimiters(requests, window)

	return func(c *gin.Context) {
		if !clients.get(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			AbortWithError(c, common.ErrTooManyRequests, false)
			return
		}

		c.Next()
	}
}
