package recipe

import "sync"

// ContextCapacity 滾動記憶保留的食譜名稱數量
const ContextCapacity = 10

// GenerationContext 最近生成的食譜名稱，用來讓下一輪產生相似的食譜
type GenerationContext struct {
	mu     sync.RWMutex
	titles []string
}

// NewGenerationContext 創建空的滾動記憶
func NewGenerationContext() *GenerationContext {
	return &GenerationContext{}
}

// Append 加入名稱，超過容量時丟棄最舊的
func (c *GenerationContext) Append(titles ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.titles = append(c.titles, titles...)
	if over := len(c.titles) - ContextCapacity; over > 0 {
		c.titles = append([]string(nil), c.titles[over:]...)
	}
}

// Titles 回傳目前內容的複本
func (c *GenerationContext) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.titles))
	copy(out, c.titles)
	return out
}

// Len 目前數量
func (c *GenerationContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.titles)
}

// Reset 清空記憶
func (c *GenerationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles = nil
}
