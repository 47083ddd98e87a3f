package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/placefeed/pkg/auth"
	"github.com/d60-Lab/placefeed/pkg/response"
)

// ContextUserIDKey 用户ID在 gin.Context 中的键名
const ContextUserIDKey = "user_id"

// Auth JWT 认证中间件。
// 从 Authorization: Bearer <token> 提取并校验 token，
// 把用户ID存入 gin.Context。
func Auth(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "authorization must be Bearer <token>")
			c.Abort()
			return
		}
		userID, err := jwtSvc.Verify(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID 从 gin.Context 取当前用户ID。
// 只应在挂了 Auth 中间件的路由里调用。
func CurrentUserID(c *gin.Context) int64 {
	if v, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
