package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	Active         int `json:"active"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 控制同時進行的模型串流數量
type Manager struct {
	slots     chan struct{}
	maxWait   int
	waiting   int64
	processed int64
	done      chan struct{}
	once      sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		slots:   make(chan struct{}, cfg.Queue.Workers),
		maxWait: cfg.Queue.MaxSize,
		done:    make(chan struct{}),
	}
}

// Acquire 取得一個串流名額，回傳的 release 必須呼叫一次
func (m *Manager) Acquire(ctx context.Context) (func(), error) {
	// 先嘗試直接取得
	select {
	case m.slots <- struct{}{}:
		return m.releaser(), nil
	default:
	}

	// 檢查隊列容量
	if atomic.AddInt64(&m.waiting, 1) > int64(m.maxWait) {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("Queue is full",
			zap.Int("max_queue_size", m.maxWait),
		)
		return nil, common.ErrQueueFull
	}
	defer atomic.AddInt64(&m.waiting, -1)

	common.LogDebug("Request enqueued",
		zap.Int64("queue_length", atomic.LoadInt64(&m.waiting)),
		zap.Int("max_queue_size", m.maxWait),
	)

	select {
	case m.slots <- struct{}{}:
		return m.releaser(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, fmt.Errorf("queue manager is closed")
	}
}

func (m *Manager) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-m.slots
			atomic.AddInt64(&m.processed, 1)
		})
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		Active:         len(m.slots),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxWait,
		Workers:        cap(m.slots),
	}
}

// Close 關閉隊列管理器，等待中的請求會失敗
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}
