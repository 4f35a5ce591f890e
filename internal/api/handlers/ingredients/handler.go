package ingredients

import (
	"net/http"

	"receptomat/internal/core/ingredients"

	"github.com/gin-gonic/gin"
)

// Handler 食材目錄處理程序
type Handler struct {
	catalog *ingredients.Catalog
}

// NewHandler 創建食材目錄處理程序
func NewHandler(catalog *ingredients.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes 註冊食材目錄路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ingredients")
	g.GET("", h.HandleList)
	g.GET("/categories", h.HandleCategories)
	g.GET("/grouped", h.HandleGrouped)
}

// HandleList 依 q 與 category 查詢食材
func (h *Handler) HandleList(c *gin.Context) {
	items := h.catalog.Query(c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"ingredients": items,
		"count":       len(items),
	})
}

// HandleCategories 主要食材的類別
func (h *Handler) HandleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": ingredients.MainCategories()})
}

// HandleGrouped 依類別分組的全部食材
func (h *Handler) HandleGrouped(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": h.catalog.Grouped()})
}
