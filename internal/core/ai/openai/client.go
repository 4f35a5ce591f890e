package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"receptomat/internal/core/ai/provider"
	"receptomat/internal/pkg/common"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client OpenAI 相容 API 的串流客戶端
type Client struct {
	client *openaigo.Client
	config provider.Config
}

// NewClient 創建客戶端，BaseURL 為空時使用官方端點
func NewClient(cfg provider.Config) *Client {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	return &Client{
		client: openaigo.NewClientWithConfig(openaiConfig),
		config: cfg,
	}
}

// Name 提供者名稱
func (c *Client) Name() string {
	return "openai"
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GenerateStream 串流生成並逐段回呼
func (c *Client) GenerateStream(ctx context.Context, req *provider.Request, onChunk provider.ChunkHandler) error {
	c.config.ApplyDefaults(req)

	messages := make([]openaigo.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openaigo.ChatMessageRoleUser
		if m.Role == provider.RoleSystem {
			role = openaigo.ChatMessageRoleSystem
		}
		messages = append(messages, openaigo.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	request := openaigo.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Stream:      true,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI stream: %w", err)
	}
	defer stream.Close()

	common.LogDebug("OpenAI stream started", zap.String("model", c.config.Model))

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read OpenAI stream: %w", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		chunk := response.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
}

// Close 關閉客戶端
func (c *Client) Close() error {
	return nil
}
