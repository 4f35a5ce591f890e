package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receptomat/internal/api"
	"receptomat/internal/api/handlers/health"
	"receptomat/internal/core/ai/cache"
	"receptomat/internal/core/ai/queue"
	"receptomat/internal/core/ai/service"
	"receptomat/internal/core/chat"
	"receptomat/internal/core/favorites"
	"receptomat/internal/core/image"
	"receptomat/internal/core/ingredients"
	"receptomat/internal/core/recipe"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 LoadConfig 讀取）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("ai_api_key", config.MaskAPIKey(cfg.AI.APIKey)),
	)

	// 模型提供者與串流名額
	p, err := service.NewProvider(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI provider", zap.Error(err))
	}
	queueManager := queue.NewManager(cfg)
	defer queueManager.Close()
	aiService := service.NewService(cfg, p, queueManager)
	defer aiService.Close()

	deps := recipe.Deps{
		AI:      aiService,
		Staples: recipe.NewStapleClassifier(cfg.Recipe.Staples),
		Images:  image.NewService(cfg.Recipe.Images),
	}

	// 詳細食譜快取，停用時為 nil
	cacheManager := cache.NewManager(cfg)
	if cacheManager != nil {
		deps.Cache = cacheManager
		defer cacheManager.Close()
	}

	sessions := recipe.NewRegistry(deps, cfg.Recipe.SessionTTL)
	defer sessions.Close()

	catalog, err := ingredients.Load(cfg.Recipe.IngredientsFile)
	if err != nil {
		common.LogFatal("Failed to load ingredient catalog", zap.Error(err))
	}

	svc := api.Services{
		Sessions:     sessions,
		Ingredients:  catalog,
		Chat:         chat.NewAssistant(aiService),
		Queue:        queueManager,
		Cache:        cacheManager,
		ProviderName: aiService.Name(),
		Dependencies: map[string]health.Pinger{},
	}
	// 收藏儲存
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := favorites.NewRedisStore(ctx, &cfg.Redis)
		cancel()
		if err != nil {
			common.LogFatal("Failed to initialize favorites store", zap.Error(err))
		}
		svc.Favorites = store
		svc.Dependencies["redis"] = store
	} else {
		svc.Favorites = favorites.NewMemoryStore()
	}
	defer svc.Favorites.Close()

	// 設置路由
	router := api.SetupRouter(cfg, svc)
	defer router.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
