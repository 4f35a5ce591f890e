package recipe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"receptomat/internal/core/ai/cache"
	"receptomat/internal/core/ai/provider"
	"receptomat/internal/core/image"
	"receptomat/internal/pkg/common"
	"receptomat/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// RoundState 單輪生成的狀態
type RoundState string

const (
	StateIdle      RoundState = "idle"
	StateStreaming RoundState = "streaming"
	StateCompleted RoundState = "completed"
	StateFailed    RoundState = "failed"
)

// DetailCache 已完成詳細食譜的快取
type DetailCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Deps Session 的外部依賴
type Deps struct {
	AI      provider.StreamProvider
	Staples *StapleClassifier
	Images  *image.Service
	Cache   DetailCache
}

// Session 一位使用者的生成工作階段：串行化輪次並保存滾動記憶
type Session struct {
	id      string
	ai      provider.StreamProvider
	list    ListParser
	detail  DetailParser
	cache   DetailCache
	context *GenerationContext
	sem     *semaphore.Weighted

	mu       sync.Mutex
	state    RoundState
	lastUsed time.Time
}

// NewSession 創建工作階段
func NewSession(id string, deps Deps) *Session {
	return &Session{
		id:       id,
		ai:       deps.AI,
		list:     NewListParser(deps.Staples, deps.Images),
		cache:    deps.Cache,
		context:  NewGenerationContext(),
		sem:      semaphore.NewWeighted(1),
		state:    StateIdle,
		lastUsed: time.Now(),
	}
}

// ID 工作階段識別碼
func (s *Session) ID() string {
	return s.id
}

// State 最近一輪的狀態
func (s *Session) State() RoundState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastUsed 最後一次使用時間
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// ContextTitles 目前滾動記憶的複本
func (s *Session) ContextTitles() []string {
	return s.context.Titles()
}

// ResetContext 清空滾動記憶（使用者開始新的搜尋時）
func (s *Session) ResetContext() {
	s.context.Reset()
	s.touch()
	common.LogDebug("重置食譜上下文", zap.String("session", s.id))
}

func (s *Session) setState(st RoundState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.lastUsed = time.Now()
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// acquire 同一工作階段同時只允許一輪
func (s *Session) acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return common.WrapError(common.ErrRequestTimeout, err)
	}
	return nil
}

// GenerateList 串流生成食譜清單；每筆新食譜呼叫 onRecipe 一次，
// 結束後回傳依缺少食材排序並截斷到 TargetCount 的結果
func (s *Session) GenerateList(ctx context.Context, req ListRequest, onRecipe RecipeHandler) ([]Summary, error) {
	if err := validateListRequest(req); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	if req.NewSearch {
		s.context.Reset()
	}

	start := time.Now()
	s.setState(StateStreaming)
	parser := s.list.ForRound(common.ShortToken())
	system, user := buildListPrompt(req, s.context.Titles())

	common.LogInfo("開始生成食譜清單",
		zap.String("session", s.id),
		zap.Int("target", req.TargetCount),
		zap.Int("servings", req.Servings),
		zap.Int("context", s.context.Len()),
	)

	var (
		acc       strings.Builder
		emitted   = make(map[int]bool)
		cursor    int
		delivered int
	)

	emit := func(recipes []Summary) {
		for _, r := range recipes {
			if emitted[r.BlockIndex] {
				continue
			}
			if delivered >= req.TargetCount {
				break
			}
			emitted[r.BlockIndex] = true
			delivered++
			metrics.RecipeEmitted()
			common.LogDebug("食譜已送出", zap.String("session", s.id), zap.Int("block", r.BlockIndex), zap.String("title", r.Title))
			if onRecipe != nil {
				onRecipe(r)
			}
		}
		for emitted[cursor] {
			cursor++
		}
	}

	err := s.ai.GenerateStream(ctx, provider.NewRequest(system, user), func(chunk string) error {
		acc.WriteString(chunk)
		emit(parser.ParsePartial(acc.String(), req.Servings, cursor))
		return nil
	})
	if err != nil {
		s.setState(StateFailed)
		metrics.ObserveRound(metrics.KindList, metrics.StatusError, time.Since(start))
		common.LogError("食譜清單生成失敗",
			zap.String("session", s.id),
			zap.Int("delivered", delivered),
			zap.Error(err),
		)
		return nil, common.WrapError(common.ErrGenerationFailed, err)
	}

	// 串流結束時最後一行不一定有換行
	emit(parser.Parse(acc.String(), req.Servings, cursor))

	final := Rank(parser.Parse(acc.String(), req.Servings, 0))
	if len(final) > req.TargetCount {
		final = final[:req.TargetCount]
	}

	titles := make([]string, len(final))
	for i, r := range final {
		titles[i] = r.Title
	}
	s.context.Append(titles...)

	s.setState(StateCompleted)
	metrics.ObserveRound(metrics.KindList, metrics.StatusSuccess, time.Since(start))
	if len(final) == 0 {
		common.LogDebug("本輪沒有可用的食譜", zap.String("session", s.id), zap.Int("text_length", acc.Len()))
	}
	common.LogInfo("食譜清單生成完成",
		zap.String("session", s.id),
		zap.Int("recipes", len(final)),
		zap.Int("delivered", delivered),
		zap.Duration("耗時", time.Since(start)),
	)

	return final, nil
}

// GenerateDetail 串流生成完整食譜；每段輸出以累積全文呼叫 onChunk
func (s *Session) GenerateDetail(ctx context.Context, req DetailRequest, onChunk ChunkHandler) (Detail, error) {
	if err := validateDetailRequest(req); err != nil {
		return Detail{}, err
	}
	if err := s.acquire(ctx); err != nil {
		return Detail{}, err
	}
	defer s.sem.Release(1)

	start := time.Now()
	s.setState(StateStreaming)
	key := cache.Key(req.RecipeName, strings.Join(req.Ingredients, ","), req.Servings)

	if s.cache != nil {
		if text, err := s.cache.Get(ctx, key); err == nil {
			if onChunk != nil {
				onChunk(text)
			}
			s.setState(StateCompleted)
			metrics.ObserveRound(metrics.KindDetail, metrics.StatusCached, time.Since(start))
			return s.detail.Parse(text), nil
		}
	}

	common.LogInfo("開始生成完整食譜",
		zap.String("session", s.id),
		zap.String("recipe", req.RecipeName),
		zap.Int("servings", req.Servings),
	)

	system, user := buildDetailPrompt(req)
	var acc strings.Builder
	err := s.ai.GenerateStream(ctx, provider.NewRequest(system, user), func(chunk string) error {
		acc.WriteString(chunk)
		if onChunk != nil {
			onChunk(acc.String())
		}
		return nil
	})
	if err != nil {
		s.setState(StateFailed)
		metrics.ObserveRound(metrics.KindDetail, metrics.StatusError, time.Since(start))
		common.LogError("完整食譜生成失敗",
			zap.String("session", s.id),
			zap.String("recipe", req.RecipeName),
			zap.Error(err),
		)
		return Detail{}, common.WrapError(common.ErrDetailFailed, err)
	}

	text := acc.String()
	if s.cache != nil && strings.TrimSpace(text) != "" {
		if err := s.cache.Set(ctx, key, text); err != nil && !errors.Is(err, common.ErrCacheFull) {
			common.LogWarn("詳細食譜寫入快取失敗", zap.Error(err))
		}
	}

	s.setState(StateCompleted)
	metrics.ObserveRound(metrics.KindDetail, metrics.StatusSuccess, time.Since(start))
	return s.detail.Parse(text), nil
}

func validateListRequest(req ListRequest) error {
	if req.Servings < 1 {
		return common.NewValidationError("servings must be at least 1")
	}
	if req.TargetCount < 1 {
		return common.NewValidationError("target count must be at least 1")
	}
	if len(req.Ingredients) == 0 && strings.TrimSpace(req.PromptExtra) == "" {
		return common.NewValidationError("ingredients or an idea is required")
	}
	if !req.Focus.Valid() {
		return common.NewValidationError("unknown focus " + string(req.Focus))
	}
	return nil
}

func validateDetailRequest(req DetailRequest) error {
	if strings.TrimSpace(req.RecipeName) == "" {
		return common.NewValidationError("recipe name is required")
	}
	if req.Servings < 1 {
		return common.NewValidationError("servings must be at least 1")
	}
	return nil
}
