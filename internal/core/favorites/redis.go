package favorites

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"receptomat/internal/core/recipe"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultFavoritesKey = "receptomat:favorites"

// entry Redis 中儲存的收藏紀錄
type entry struct {
	Recipe  recipe.Summary `json:"recipe"`
	AddedAt int64          `json:"added_at"`
}

// RedisStore 每個 owner 一個 Redis hash（key 為 <prefix>:<owner>），field 為收藏 id
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 創建 Redis 收藏儲存
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("收藏儲存已連線 Redis", zap.String("addr", cfg.Addr))
	return NewRedisStoreWithClient(client, cfg.FavoritesKey), nil
}

// NewRedisStoreWithClient 使用現有客戶端創建收藏儲存
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultFavoritesKey
	}
	return &RedisStore{client: client, key: key}
}

// ownerKey owner 的收藏 hash key
func (r *RedisStore) ownerKey(owner string) string {
	return r.key + ":" + owner
}

func (r *RedisStore) Add(ctx context.Context, owner string, s recipe.Summary) (recipe.Summary, error) {
	s, err := prepare(owner, s)
	if err != nil {
		return s, err
	}

	data, err := json.Marshal(entry{Recipe: s, AddedAt: time.Now().UnixNano()})
	if err != nil {
		return s, fmt.Errorf("failed to marshal favorite: %w", err)
	}

	added, err := r.client.HSetNX(ctx, r.ownerKey(owner), s.ID, data).Result()
	if err != nil {
		return s, fmt.Errorf("failed to add favorite: %w", err)
	}
	if added {
		return s, nil
	}

	// 已存在，回傳原有紀錄
	existing, err := r.get(ctx, owner, s.ID)
	if err != nil {
		return s, err
	}
	return existing.Recipe, nil
}

func (r *RedisStore) Remove(ctx context.Context, owner, id string) error {
	n, err := r.client.HDel(ctx, r.ownerKey(owner), id).Result()
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context, owner string) ([]recipe.Summary, error) {
	raw, err := r.client.HGetAll(ctx, r.ownerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	entries := make([]entry, 0, len(raw))
	for id, v := range raw {
		var e entry
		if err := common.ParseJSON(v, &e); err != nil {
			common.LogWarn("略過損壞的收藏紀錄", zap.String("id", id), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.AddedAt, b.AddedAt)
	})

	out := make([]recipe.Summary, len(entries))
	for i, e := range entries {
		out[i] = e.Recipe
	}
	return out, nil
}

func (r *RedisStore) Contains(ctx context.Context, owner, id string) (bool, error) {
	ok, err := r.client.HExists(ctx, r.ownerKey(owner), id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) Toggle(ctx context.Context, owner string, s recipe.Summary) (bool, error) {
	return toggle(ctx, r, owner, s)
}

// Ping 檢查 Redis 連線
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) get(ctx context.Context, owner, id string) (entry, error) {
	var e entry
	data, err := r.client.HGet(ctx, r.ownerKey(owner), id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return e, common.ErrNotFound
		}
		return e, fmt.Errorf("failed to get favorite: %w", err)
	}
	if err := common.ParseJSONBytes(data, &e); err != nil {
		return e, fmt.Errorf("failed to unmarshal favorite: %w", err)
	}
	return e, nil
}
