package provider

import (
	"context"
	"time"
)

// 對話角色
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示發送到 AI 提供者的串流請求
type Request struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// NewRequest 以 system + user 兩段訊息建立請求
func NewRequest(system, prompt string) *Request {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: prompt})
	return &Request{Messages: msgs}
}

// ChunkHandler 依序接收模型輸出的文字片段，回傳錯誤會中止串流
type ChunkHandler func(chunk string) error

// StreamProvider 定義串流 AI 提供者介面
type StreamProvider interface {
	// GenerateStream 串流生成文字，正常結束回傳 nil
	GenerateStream(ctx context.Context, req *Request, onChunk ChunkHandler) error

	// Name 提供者名稱
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// ApplyDefaults 補上請求中未設定的參數
func (c Config) ApplyDefaults(req *Request) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
}
