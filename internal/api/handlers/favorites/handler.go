package favorites

import (
	"net/http"

	"receptomat/internal/api/handlers"
	"receptomat/internal/api/middleware"
	"receptomat/internal/core/favorites"
	"receptomat/internal/core/recipe"
	"receptomat/internal/pkg/common"
	"receptomat/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToggleResponse 切換收藏的結果
type ToggleResponse struct {
	ID    string `json:"id,omitempty"`
	Added bool   `json:"added"`
}

// Handler 收藏處理程序
type Handler struct {
	store favorites.Store
	debug bool
}

// NewHandler 創建收藏處理程序
func NewHandler(store favorites.Store, debug bool) *Handler {
	return &Handler{store: store, debug: debug}
}

// RegisterRoutes 註冊收藏路由；收藏以 X-Session-ID 區分，需掛在 Session 中間件之後
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/favorites")
	g.GET("", h.HandleList)
	g.POST("", h.HandleAdd)
	g.POST("/toggle", h.HandleToggle)
	g.GET("/:id", h.HandleContains)
	g.DELETE("/:id", h.HandleRemove)
}

// HandleList 列出收藏
func (h *Handler) HandleList(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		handlers.AbortWithError(c, common.WrapError(common.ErrServiceUnavailable, err), h.debug)
		return
	}
	if list == nil {
		list = []recipe.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}

// HandleAdd 加入收藏
func (h *Handler) HandleAdd(c *gin.Context) {
	var req recipe.Summary
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	saved, err := h.store.Add(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		handlers.AbortWithError(c, err, h.debug)
		return
	}

	metrics.TrackRecipeFavorite(metrics.ActionAdd)
	common.LogInfo("加入收藏",
		zap.String("session", middleware.SessionID(c)),
		zap.String("id", saved.ID),
		zap.String("title", saved.Title),
	)
	c.JSON(http.StatusCreated, saved)
}

// HandleToggle 已收藏則移除，否則加入
func (h *Handler) HandleToggle(c *gin.Context) {
	var req recipe.Summary
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	added, err := h.store.Toggle(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		handlers.AbortWithError(c, err, h.debug)
		return
	}

	action := metrics.ActionRemove
	if added {
		action = metrics.ActionAdd
	}
	metrics.TrackRecipeFavorite(action)
	c.JSON(http.StatusOK, ToggleResponse{ID: req.ID, Added: added})
}

// HandleContains 查詢是否已收藏
func (h *Handler) HandleContains(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.store.Contains(c.Request.Context(), middleware.SessionID(c), id)
	if err != nil {
		handlers.AbortWithError(c, common.WrapError(common.ErrServiceUnavailable, err), h.debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_favorite": ok})
}

// HandleRemove 移除收藏
func (h *Handler) HandleRemove(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Remove(c.Request.Context(), middleware.SessionID(c), id); err != nil {
		handlers.AbortWithError(c, err, h.debug)
		return
	}

	metrics.TrackRecipeFavorite(metrics.ActionRemove)
	common.LogInfo("移除收藏", zap.String("session", middleware.SessionID(c)), zap.String("id", id))
	c.Status(http.StatusNoContent)
}
