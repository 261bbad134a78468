package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/identity"
)

// UserIDKey handler 通过 c.GetString(UserIDKey) 取当前用户
const UserIDKey = "userID"

// Auth 校验 Authorization: Bearer <token>，通过后把用户 ID 写入上下文
func Auth(v identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 取 token
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, apperr.New(apperr.ErrAuth, "missing bearer token"))
			return
		}

		// 2. 校验
		uid, err := v.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abort(c, err)
			return
		}

		// 3. 写入上下文
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"code":  apperr.CodeOf(err),
	})
}
