package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"receptomat/internal/core/ai/ollama"
	"receptomat/internal/core/ai/openai"
	"receptomat/internal/core/ai/openrouter"
	"receptomat/internal/core/ai/provider"
	"receptomat/internal/core/ai/queue"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"
	"receptomat/internal/pkg/metrics"

	"go.uber.org/zap"
)

// NewProvider 依設定建立對應的串流提供者
func NewProvider(cfg *config.Config) (provider.StreamProvider, error) {
	pcfg := provider.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.Timeout,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	}

	switch strings.ToLower(cfg.AI.Provider) {
	case "openrouter":
		return openrouter.NewClient(pcfg), nil
	case "openai":
		return openai.NewClient(pcfg), nil
	case "ollama":
		return ollama.NewClient(pcfg)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// Service 包裝提供者：限制同時串流數、逾時、記錄與指標
type Service struct {
	provider     provider.StreamProvider
	queue        *queue.Manager
	roundTimeout time.Duration
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, p provider.StreamProvider, q *queue.Manager) *Service {
	return &Service{
		provider:     p,
		queue:        q,
		roundTimeout: cfg.Server.RoundTimeout,
	}
}

// Name 提供者名稱
func (s *Service) Name() string {
	return s.provider.Name()
}

// GetModel 模型名稱
func (s *Service) GetModel() string {
	return s.provider.GetModel()
}

// GenerateStream 取得串流名額後呼叫底層提供者
func (s *Service) GenerateStream(ctx context.Context, req *provider.Request, onChunk provider.ChunkHandler) error {
	if s.queue != nil {
		release, err := s.queue.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
	}

	if s.roundTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.roundTimeout)
		defer cancel()
	}

	start := time.Now()
	chunks := 0
	err := s.provider.GenerateStream(ctx, req, func(chunk string) error {
		chunks++
		return onChunk(chunk)
	})

	common.LogAICall(s.provider.Name(), time.Since(start), chunks, err)
	metrics.ObserveChunks(s.provider.Name(), chunks)
	if err != nil {
		common.LogDebug("stream aborted",
			zap.String("model", s.provider.GetModel()),
			zap.Int("chunks", chunks),
		)
	}
	return err
}

// Close 關閉底層提供者
func (s *Service) Close() error {
	return s.provider.Close()
}
