package favorites

import (
	"context"
	"strings"

	"receptomat/internal/core/recipe"
	"receptomat/internal/pkg/common"
)

// idSlugLength 收藏 id 中標題 slug 的最大長度
const idSlugLength = 50

// Store 收藏儲存介面；每個 owner（工作階段）各自一份收藏
type Store interface {
	// Add 加入收藏，已存在的 id 不會重複加入，回傳實際儲存的紀錄
	Add(ctx context.Context, owner string, s recipe.Summary) (recipe.Summary, error)
	// Remove 依 id 移除收藏，不存在時回傳 common.ErrNotFound
	Remove(ctx context.Context, owner, id string) error
	// List 依加入順序列出收藏
	List(ctx context.Context, owner string) ([]recipe.Summary, error)
	// Contains 檢查 id 是否已收藏
	Contains(ctx context.Context, owner, id string) (bool, error)
	// Toggle 已收藏則移除，否則加入；回傳是否為加入
	Toggle(ctx context.Context, owner string, s recipe.Summary) (bool, error)
	Close() error
}

// GenerateID 依標題產生收藏 id
func GenerateID(title string) string {
	slug := common.Slugify(title, idSlugLength)
	if slug == "" {
		slug = "recept"
	}
	return slug + "-" + common.ShortToken()
}

// prepare 補齊 id 並標記為收藏
func prepare(owner string, s recipe.Summary) (recipe.Summary, error) {
	if owner == "" {
		return s, common.NewValidationError("owner is required")
	}
	if strings.TrimSpace(s.Title) == "" && s.ID == "" {
		return s, common.NewValidationError("title or id is required")
	}
	if s.ID == "" {
		s.ID = GenerateID(s.Title)
	}
	s.IsFavorite = true
	return s, nil
}

// toggle 以 Contains/Add/Remove 實作 Toggle
func toggle(ctx context.Context, st Store, owner string, s recipe.Summary) (bool, error) {
	if s.ID != "" {
		ok, err := st.Contains(ctx, owner, s.ID)
		if err != nil {
			return false, err
		}
		if ok {
			return false, st.Remove(ctx, owner, s.ID)
		}
	}
	if _, err := st.Add(ctx, owner, s); err != nil {
		return false, err
	}
	return true, nil
}
