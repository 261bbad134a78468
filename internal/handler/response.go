package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/middleware"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// fail AppError 按错误码映射状态码；其它错误统一 500，不把内部信息带给前端
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"code":  apperr.CodeOf(err),
	})
}

func badRequest(c *gin.Context, err error) {
	fail(c, apperr.Wrap(apperr.ErrValidation, "invalid request body", err))
}

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
