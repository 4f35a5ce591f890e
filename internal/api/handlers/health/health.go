package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"receptomat/internal/core/ai/cache"
	"receptomat/internal/core/ai/queue"
	"receptomat/internal/core/recipe"
	"receptomat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的外部依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Provider  string                 `json:"provider,omitempty"`
	Sessions  int                    `json:"sessions"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version  string
	provider string
	queue    *queue.Manager
	cache    *cache.CacheManager
	sessions *recipe.Registry
	deps     map[string]Pinger
}

// NewHandler 創建健康檢查處理器；queue 與 cache 可為 nil
func NewHandler(version, provider string, q *queue.Manager, c *cache.CacheManager, sessions *recipe.Registry) *Handler {
	return &Handler{
		version:  version,
		provider: provider,
		queue:    q,
		cache:    c,
		sessions: sessions,
		deps:     make(map[string]Pinger),
	}
}

// AddDependency 加入 /ready 需要檢查的依賴
func (h *Handler) AddDependency(name string, p Pinger) {
	h.deps[name] = p
}

// RegisterRoutes 註冊健康檢查路由
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Provider:  h.provider,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.sessions != nil {
		response.Sessions = h.sessions.Len()
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		response.Cache = h.cache.GetStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		common.LogWarn("就緒檢查失敗", zap.Any("dependencies", failed))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"errors": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
