package api

import (
	"time"

	chatHandler "receptomat/internal/api/handlers/chat"
	"receptomat/internal/api/handlers/favorites"
	"receptomat/internal/api/handlers/health"
	ingredientsHandler "receptomat/internal/api/handlers/ingredients"
	recipeHandler "receptomat/internal/api/handlers/recipe"
	"receptomat/internal/api/middleware"
	"receptomat/internal/core/ai/cache"
	"receptomat/internal/core/ai/queue"
	"receptomat/internal/core/chat"
	favoriteStore "receptomat/internal/core/favorites"
	"receptomat/internal/core/ingredients"
	"receptomat/internal/core/recipe"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// 請求體大小限制 (1MB)
const maxBodySize = 1 << 20

// Services 路由需要的服務
type Services struct {
	Sessions     *recipe.Registry
	Favorites    favoriteStore.Store
	Ingredients  *ingredients.Catalog
	Chat         *chat.Assistant
	Queue        *queue.Manager
	Cache        *cache.CacheManager
	ProviderName string
	// Dependencies 會在 /ready 檢查
	Dependencies map[string]health.Pinger
}

// Router 組好的 gin 引擎與需要關閉的資源
type Router struct {
	*gin.Engine
	dedup *middleware.Deduplicator
}

// Close 停止中間件的背景工作
func (r *Router) Close() {
	if r.dedup != nil {
		r.dedup.Close()
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *Router {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	router := &Router{Engine: engine}

	// 註冊基礎中間件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(requestid.New())
	engine.Use(middleware.Session())

	// CORS 設置
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodySizeLimit(maxBodySize))

	// Prometheus：/metrics 與 HTTP 指標，需在註冊路由前掛上
	ginprometheus.NewPrometheus("receptomat").Use(engine)

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, svc.ProviderName, svc.Queue, svc.Cache, svc.Sessions)
	for name, dep := range svc.Dependencies {
		healthHandler.AddDependency(name, dep)
	}
	healthHandler.RegisterRoutes(engine)

	// API 路由組
	v1 := engine.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		router.dedup = middleware.NewDeduplicator(cfg.DedupWindow)
		v1.Use(router.dedup.Middleware())
	}

	recipeHandler.NewHandler(svc.Sessions, cfg).RegisterRoutes(v1)
	if svc.Favorites != nil {
		favorites.NewHandler(svc.Favorites, cfg.App.Debug).RegisterRoutes(v1)
	}
	if svc.Ingredients != nil {
		ingredientsHandler.NewHandler(svc.Ingredients).RegisterRoutes(v1)
	}
	if svc.Chat != nil {
		chatHandler.NewHandler(svc.Chat, cfg.App.Debug).RegisterRoutes(v1)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Bool("favorites", svc.Favorites != nil),
		zap.Bool("ingredients", svc.Ingredients != nil),
		zap.Bool("chat", svc.Chat != nil),
		zap.Bool("cache", svc.Cache != nil),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
