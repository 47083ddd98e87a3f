package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/placefeed/internal/apperr"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: message})
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: http.StatusForbidden, Message: message})
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: message})
}

// InternalError 500。详细错误只进日志，不回给客户端。
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err) // 带进请求日志的 errors 字段
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "internal error"})
}

// FromError 把业务错误翻译成 HTTP 响应。拉黑方的存在性不泄漏：
// service 层已把需要隐藏的 Forbidden 降级为 NotFound，这里只做映射。
func FromError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		NotFound(c, "not found")
	case apperr.IsForbidden(err):
		Forbidden(c, "forbidden")
	case apperr.IsInvalid(err):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrUnauthenticated):
		Unauthorized(c, "unauthenticated")
	default:
		InternalError(c, err)
	}
}
