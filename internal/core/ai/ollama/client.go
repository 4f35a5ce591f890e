package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"receptomat/internal/core/ai/provider"
	"receptomat/internal/pkg/common"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const defaultBaseURL = "http://localhost:11434"

// Client Ollama 串流客戶端
type Client struct {
	client *api.Client
	config provider.Config
}

// NewClient 創建客戶端；api.NewClient 需要不含 /v1 的網址
func NewClient(cfg provider.Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client: api.NewClient(parsedURL, httpClient),
		config: cfg,
	}, nil
}

// Name 提供者名稱
func (c *Client) Name() string {
	return "ollama"
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GenerateStream 串流生成並逐段回呼
func (c *Client) GenerateStream(ctx context.Context, req *provider.Request, onChunk provider.ChunkHandler) error {
	c.config.ApplyDefaults(req)

	messages := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := true
	chatReq := &api.ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}
	if len(req.Stop) > 0 {
		chatReq.Options["stop"] = req.Stop
	}

	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			if err := onChunk(resp.Message.Content); err != nil {
				return err
			}
		}
		if resp.Done && resp.DoneReason != "" && resp.DoneReason != "stop" {
			common.LogWarn("Ollama stream finished with non-stop reason",
				zap.String("reason", resp.DoneReason),
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama stream failed: %w", err)
	}
	return nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	return nil
}
