package favorites

import (
	"context"
	"slices"
	"sync"

	"receptomat/internal/core/recipe"
	"receptomat/internal/pkg/common"
)

// favoriteList 單一 owner 的收藏，保留加入順序
type favoriteList struct {
	order []string
	items map[string]recipe.Summary
}

// MemoryStore 行程內收藏儲存
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string]*favoriteList
}

// NewMemoryStore 創建記憶體收藏儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]*favoriteList)}
}

func (m *MemoryStore) Add(ctx context.Context, owner string, s recipe.Summary) (recipe.Summary, error) {
	s, err := prepare(owner, s)
	if err != nil {
		return s, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lists[owner]
	if !ok {
		l = &favoriteList{items: make(map[string]recipe.Summary)}
		m.lists[owner] = l
	}
	if existing, ok := l.items[s.ID]; ok {
		return existing, nil
	}
	l.items[s.ID] = s
	l.order = append(l.order, s.ID)
	return s, nil
}

func (m *MemoryStore) Remove(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lists[owner]
	if !ok {
		return common.ErrNotFound
	}
	if _, ok := l.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(l.items, id)
	if i := slices.Index(l.order, id); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}
	if len(l.items) == 0 {
		delete(m.lists, owner)
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, owner string) ([]recipe.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lists[owner]
	if !ok {
		return []recipe.Summary{}, nil
	}
	out := make([]recipe.Summary, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out, nil
}

func (m *MemoryStore) Contains(ctx context.Context, owner, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lists[owner]
	if !ok {
		return false, nil
	}
	_, ok = l.items[id]
	return ok, nil
}

func (m *MemoryStore) Toggle(ctx context.Context, owner string, s recipe.Summary) (bool, error) {
	return toggle(ctx, m, owner, s)
}

func (m *MemoryStore) Close() error {
	return nil
}
