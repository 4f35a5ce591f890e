package middleware

import (
	"regexp"

	"receptomat/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// SessionHeader 用來識別生成工作階段的標頭
const SessionHeader = "X-Session-ID"

const sessionContextKey = "session_id"

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Session 讀取 X-Session-ID，缺少或格式不符時發新的 uuid，並回寫到響應標頭
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !validSessionID.MatchString(id) {
			id = common.GenerateUUID()
		}
		c.Set(sessionContextKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID 取得目前請求的工作階段 id
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
