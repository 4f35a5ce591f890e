package recipe

import (
	"sync"
	"time"

	"receptomat/internal/pkg/common"

	"go.uber.org/zap"
)

// Registry 依工作階段 ID 管理 Session，閒置過久的會被清除
type Registry struct {
	deps     Deps
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*Session
	done     chan struct{}
	once     sync.Once
}

// NewRegistry 創建工作階段註冊表；ttl > 0 時啟動清理協程
func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	r := &Registry{
		deps:     deps,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		go r.startCleanup(ttl / 2)
	}
	return r
}

// Get 取得工作階段並更新使用時間，不存在時建立
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		// 與 cleanup 同在 r.mu 之下，取回後不會馬上被清除
		s.touch()
		return s
	}
	s := NewSession(id, r.deps)
	r.sessions[id] = s
	return s
}

// Lookup 只取得已存在的工作階段
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len 目前工作階段數量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup(time.Now())
		case <-r.done:
			return
		}
	}
}

// cleanup 移除閒置超過 ttl 且沒有進行中輪次的工作階段
func (r *Registry) cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, s := range r.sessions {
		if s.State() == StateStreaming || now.Sub(s.LastUsed()) < r.ttl {
			continue
		}
		delete(r.sessions, id)
		count++
	}

	if count > 0 {
		common.LogInfo("Cleaned up idle sessions",
			zap.Int("count", count),
			zap.Int("remaining", len(r.sessions)),
		)
	}
	return count
}

// Close 停止清理協程
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}
