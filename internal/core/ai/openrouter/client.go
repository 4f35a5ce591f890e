package openrouter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"receptomat/internal/core/ai/provider"
	"receptomat/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	dataPrefix     = "data:"
	doneMarker     = "[DONE]"
)

// Client OpenRouter 串流客戶端
type Client struct {
	client *resty.Client
	config provider.Config
}

// Request 表示 API 請求
type Request struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Stop        []string           `json:"stop,omitempty"`
	Stream      bool               `json:"stream"`
}

// streamChunk SSE 每一行 data 的內容
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// apiError 表示 API 錯誤
type apiError struct {
	Message string      `json:"message"`
	Code    interface{} `json:"code"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Accept", "text/event-stream").
		SetHeader("HTTP-Referer", "https://receptomat.app").
		SetHeader("X-Title", "Receptomat")

	return &Client{
		client: client,
		config: cfg,
	}
}

// Name 提供者名稱
func (c *Client) Name() string {
	return "openrouter"
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GenerateStream 送出串流請求並逐段回呼
func (c *Client) GenerateStream(ctx context.Context, req *provider.Request, onChunk provider.ChunkHandler) error {
	c.config.ApplyDefaults(req)

	body := Request{
		Model:       c.config.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
		Stream:      true,
	}

	common.LogDebug("Sending stream request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetDoNotParseResponse(true).
		Post("/chat/completions")
	if err != nil {
		return fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	raw := resp.RawBody()
	if raw == nil {
		return fmt.Errorf("empty response body from OpenRouter")
	}
	defer raw.Close()

	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(raw, 4096))
		return fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), strings.TrimSpace(string(msg)))
	}

	return readEventStream(raw, onChunk)
}

// readEventStream 解析 SSE 串流，直到 [DONE] 或 EOF
func readEventStream(r io.Reader, onChunk provider.ChunkHandler) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			done, handleErr := handleLine(strings.TrimRight(line, "\r\n"), onChunk)
			if handleErr != nil {
				return handleErr
			}
			if done {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read OpenRouter stream: %w", err)
		}
	}
}

// handleLine 處理單行；以 ":" 開頭的為註解（例如 OPENROUTER PROCESSING）
func handleLine(line string, onChunk provider.ChunkHandler) (bool, error) {
	if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, dataPrefix) {
		return false, nil
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneMarker {
		return true, nil
	}

	var chunk streamChunk
	if err := common.ParseJSON(payload, &chunk); err != nil {
		return false, fmt.Errorf("failed to parse OpenRouter chunk: %w", err)
	}
	if chunk.Error != nil {
		return false, fmt.Errorf("OpenRouter stream error: %s", chunk.Error.Message)
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content == "" {
			continue
		}
		if err := onChunk(choice.Delta.Content); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
