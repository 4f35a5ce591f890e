package chat

import (
	"net/http"

	"receptomat/internal/api/handlers"
	"receptomat/internal/api/middleware"
	"receptomat/internal/core/chat"
	"receptomat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AskRequest 問答請求
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// ChunkEvent 串流中的累積回答
type ChunkEvent struct {
	Text string `json:"text"`
}

// DoneEvent 完整回答
type DoneEvent struct {
	Answer string `json:"answer"`
}

// Handler 問答處理程序
type Handler struct {
	assistant *chat.Assistant
	debug     bool
}

// NewHandler 創建問答處理程序
func NewHandler(assistant *chat.Assistant, debug bool) *Handler {
	return &Handler{assistant: assistant, debug: debug}
}

// RegisterRoutes 註冊問答路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/chat")
	g.GET("", h.HandleGreeting)
	g.POST("", h.HandleAsk)
}

// HandleGreeting 歡迎訊息
func (h *Handler) HandleGreeting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"greeting": chat.Greeting})
}

// HandleAsk 串流回答
func (h *Handler) HandleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.AbortWithError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	common.LogInfo("開始處理問答請求", zap.String("session", middleware.SessionID(c)))

	stream := handlers.NewEventStream(c, h.debug)
	answer, err := h.assistant.Ask(c.Request.Context(), req.Question, func(acc string) {
		stream.Send(handlers.EventChunk, ChunkEvent{Text: acc})
	})
	if err != nil {
		stream.Fail(err)
		return
	}

	stream.Send(handlers.EventDone, DoneEvent{Answer: answer})
}
