package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-assistant/internal/pkg/common"
)

// Deduplicator 記錄最近的 POST 請求指紋
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	exempt   map[string]bool
	now      func() time.Time
}

// NewDeduplicator 創建去重器，window 內相同的請求視為重複。
// exempt 中的路徑不去重，例如相同參數也應回傳不同結果的隨機食譜。
func NewDeduplicator(window time.Duration, exempt ...string) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	d := &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		exempt:   make(map[string]bool, len(exempt)),
		now:      time.Now,
	}
	for _, path := range exempt {
		d.exempt[path] = true
	}
	return d
}

// Seen 記錄指紋，window 內已出現過則回傳 true
func (d *Deduplicator) Seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now

	// 指紋累積過多時順便清掉舊的
	if len(d.requests) > 1024 {
		for k, t := range d.requests {
			if now.Sub(t) > 10*d.window {
				delete(d.requests, k)
			}
		}
	}
	return false
}

// Middleware 請求去重中間件，只處理 POST
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil || d.exempt[c.FullPath()] {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogWarn("Failed to read request body", zap.Error(err))
			AbortWithError(c, common.ErrRequestTooLarge.WithErr(err), false)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(hash[:])

		if d.Seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			AbortWithError(c, common.ErrTooManyRequests, false)
			return
		}

		c.Next()
	}
}
