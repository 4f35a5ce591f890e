package recipe

import (
	"net/http"

	"receptomat/internal/api/handlers"
	"receptomat/internal/api/middleware"
	recipeService "receptomat/internal/core/recipe"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/pkg/common"
	"receptomat/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventRecipe 清單串流中的單筆食譜事件
const EventRecipe = "recipe"

// IngredientsRequest 依現有食材搜尋食譜
type IngredientsRequest struct {
	Ingredients []string            `json:"ingredients" binding:"required,min=1"`
	Servings    int                 `json:"servings,omitempty"`
	Focus       recipeService.Focus `json:"focus,omitempty"`
	Count       int                 `json:"count,omitempty"`
}

// IdeaRequest 依一段想法描述搜尋食譜
type IdeaRequest struct {
	Idea        string              `json:"idea" binding:"required"`
	Ingredients []string            `json:"ingredients,omitempty"`
	Servings    int                 `json:"servings,omitempty"`
	Focus       recipeService.Focus `json:"focus,omitempty"`
	Count       int                 `json:"count,omitempty"`
}

// MoreRequest 在同一工作階段上再生成幾道，沿用上一次的條件
type MoreRequest struct {
	Ingredients []string            `json:"ingredients,omitempty"`
	Idea        string              `json:"idea,omitempty"`
	Servings    int                 `json:"servings,omitempty"`
	Focus       recipeService.Focus `json:"focus,omitempty"`
}

// DetailRequest 完整食譜請求
type DetailRequest struct {
	RecipeName  string   `json:"recipe_name" binding:"required"`
	Ingredients []string `json:"ingredients,omitempty"`
	Servings    int      `json:"servings,omitempty"`
}

// ChunkEvent 詳細食譜串流中的一段
type ChunkEvent struct {
	Text   string               `json:"text"`
	Detail recipeService.Detail `json:"detail"`
}

// ListDoneEvent 清單串流結束
type ListDoneEvent struct {
	Recipes []recipeService.Summary `json:"recipes"`
}

// Handler 食譜處理程序
type Handler struct {
	sessions *recipeService.Registry
	cfg      config.RecipeConfig
	debug    bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(sessions *recipeService.Registry, cfg *config.Config) *Handler {
	return &Handler{
		sessions: sessions,
		cfg:      cfg.Recipe,
		debug:    cfg.App.Debug,
	}
}

// RegisterRoutes 註冊食譜路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/recipes")
	g.POST("/ingredients", h.HandleIngredients)
	g.POST("/idea", h.HandleIdea)
	g.POST("/more", h.HandleMore)
	g.POST("/detail", h.HandleDetail)
	g.GET("/context", h.HandleGetContext)
	g.DELETE("/context", h.HandleResetContext)
}

func (h *Handler) servings(n int) int {
	if n > 0 {
		return n
	}
	if h.cfg.DefaultServings > 0 {
		return h.cfg.DefaultServings
	}
	return recipeService.DefaultServings
}

func (h *Handler) targetCount(n int) int {
	if n > 0 {
		return n
	}
	if h.cfg.DefaultTargetCount > 0 {
		return h.cfg.DefaultTargetCount
	}
	return recipeService.DefaultTargetCount
}

func (h *Handler) moreCount() int {
	if h.cfg.MoreCount > 0 {
		return h.cfg.MoreCount
	}
	return recipeService.DefaultMoreCount
}

// HandleIngredients 新的食材搜尋，先清空滾動記憶
func (h *Handler) HandleIngredients(c *gin.Context) {
	var req IngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	h.streamList(c, recipeService.ListRequest{
		Ingredients: req.Ingredients,
		Focus:       req.Focus,
		Servings:    h.servings(req.Servings),
		TargetCount: h.targetCount(req.Count),
		NewSearch:   true,
	})
}

// HandleIdea 依想法描述的新搜尋，先清空滾動記憶
func (h *Handler) HandleIdea(c *gin.Context) {
	var req IdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	h.streamList(c, recipeService.ListRequest{
		Ingredients: req.Ingredients,
		PromptExtra: req.Idea,
		Focus:       req.Focus,
		Servings:    h.servings(req.Servings),
		TargetCount: h.targetCount(req.Count),
		NewSearch:   true,
	})
}

// HandleMore 再生成幾道，保留滾動記憶
func (h *Handler) HandleMore(c *gin.Context) {
	var req MoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	h.streamList(c, recipeService.ListRequest{
		Ingredients: req.Ingredients,
		PromptExtra: req.Idea,
		Focus:       req.Focus,
		Servings:    h.servings(req.Servings),
		TargetCount: h.moreCount(),
	})
}

func (h *Handler) streamList(c *gin.Context, req recipeService.ListRequest) {
	sessionID := middleware.SessionID(c)
	session := h.sessions.Get(sessionID)
	stream := handlers.NewEventStream(c, h.debug)

	if req.NewSearch {
		metrics.TrackRecipeGeneration(len(req.Ingredients), req.Servings)
	}

	common.LogInfo("開始處理食譜清單請求",
		zap.String("session", sessionID),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Bool("new_search", req.NewSearch),
	)

	recipes, err := session.GenerateList(c.Request.Context(), req, func(s recipeService.Summary) {
		stream.Send(EventRecipe, s)
	})
	if err != nil {
		stream.Fail(err)
		return
	}

	stream.Send(handlers.EventDone, ListDoneEvent{Recipes: recipes})
}

// HandleDetail 串流完整食譜
func (h *Handler) HandleDetail(c *gin.Context) {
	var req DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	sessionID := middleware.SessionID(c)
	session := h.sessions.Get(sessionID)
	stream := handlers.NewEventStream(c, h.debug)
	parser := recipeService.DetailParser{}

	metrics.TrackRecipeView()
	common.LogInfo("開始處理完整食譜請求",
		zap.String("session", sessionID),
		zap.String("recipe", req.RecipeName),
	)

	detail, err := session.GenerateDetail(c.Request.Context(), recipeService.DetailRequest{
		RecipeName:  req.RecipeName,
		Ingredients: req.Ingredients,
		Servings:    h.servings(req.Servings),
	}, func(accumulated string) {
		stream.Send(handlers.EventChunk, ChunkEvent{Text: accumulated, Detail: parser.Parse(accumulated)})
	})
	if err != nil {
		stream.Fail(err)
		return
	}

	stream.Send(handlers.EventDone, detail)
}

// HandleGetContext 目前工作階段的滾動記憶
func (h *Handler) HandleGetContext(c *gin.Context) {
	var titles []string
	if s, ok := h.sessions.Lookup(middleware.SessionID(c)); ok {
		titles = s.ContextTitles()
	}
	if titles == nil {
		titles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

// HandleResetContext 清空滾動記憶
func (h *Handler) HandleResetContext(c *gin.Context) {
	if s, ok := h.sessions.Lookup(middleware.SessionID(c)); ok {
		s.ResetContext()
	}
	c.Status(http.StatusNoContent)
}
