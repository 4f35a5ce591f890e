package handlers

import (
	"net/http"

	"receptomat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError 把內部錯誤轉成對外的 CustomError
func APIError(err error) *common.CustomError {
	if common.IsValidationError(err) {
		return common.NewError(common.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest, err)
	}
	return common.AsCustomError(err)
}

// AbortWithError 以 JSON 回應錯誤並中止
func AbortWithError(c *gin.Context, err error, debug bool) {
	ce := APIError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(debug))
}
