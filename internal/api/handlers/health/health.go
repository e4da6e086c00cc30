package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-assistant/internal/core/session"
	"food-assistant/internal/infrastructure/config"
	"food-assistant/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Upstreams *UpstreamStatus        `json:"upstreams"`
	Session   map[string]interface{} `json:"session,omitempty"`
}

// UpstreamStatus 外部 API 金鑰是否已設定
type UpstreamStatus struct {
	FDCConfigured         bool `json:"fdc_configured"`
	SpoonacularConfigured bool `json:"spoonacular_configured"`
}

func configFrom(c *gin.Context) (*config.Config, bool) {
	v, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		return nil, false
	}
	cfg, ok := v.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		return nil, false
	}
	return cfg, true
}

func storeFrom(c *gin.Context) session.Store {
	v, exists := c.Get("session_store")
	if !exists {
		return nil
	}
	store, _ := v.(session.Store)
	return store
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, ok := configFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Upstreams: &UpstreamStatus{
			FDCConfigured:         !config.IsPlaceholderKey(cfg.FDC.APIKey),
			SpoonacularConfigured: !config.IsPlaceholderKey(cfg.Spoonacular.APIKey),
		},
	}
	if store := storeFrom(c); store != nil {
		response.Session = store.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，需要設定與對話儲存都已就緒
func ReadinessCheck(c *gin.Context) {
	if _, ok := configFrom(c); !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "configuration"})
		return
	}
	if storeFrom(c) == nil {
		common.LogWarn("Session store not found in context")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "session store"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
