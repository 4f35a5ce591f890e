package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SSE 事件名稱
const (
	EventChunk = "chunk"
	EventDone  = "done"
	EventError = "error"
)

// EventStream 延後送出標頭：第一個事件之前的錯誤仍以一般 JSON 回應
type EventStream struct {
	c       *gin.Context
	debug   bool
	started bool
}

// NewEventStream 創建 SSE 串流
func NewEventStream(c *gin.Context, debug bool) *EventStream {
	return &EventStream{c: c, debug: debug}
}

func (s *EventStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.c.Status(http.StatusOK)
}

// Send 送出一個事件並立即 flush
func (s *EventStream) Send(event string, data any) {
	s.start()
	s.c.SSEvent(event, data)
	s.c.Writer.Flush()
}

// Fail 串流開始前回 JSON 錯誤，開始後改送 error 事件
func (s *EventStream) Fail(err error) {
	if !s.started {
		AbortWithError(s.c, err, s.debug)
		return
	}
	_ = s.c.Error(err)
	s.Send(EventError, APIError(err).Response(s.debug))
}
