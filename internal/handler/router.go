package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Sync       *SyncHandler
	Chat       *ChatHandler
	Agent      *AgentHandler
	Credential *CredentialHandler
	Profile    *ProfileHandler
}

// RegisterRoutes 公开接口 + 需要 Bearer token 的接口
func RegisterRoutes(r *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// 公开接口
		api.POST("/agents/check", h.Agent.Check)

		// 鉴权接口
		protected := api.Group("/")
		protected.Use(auth)
		{
			// 同步任务
			protected.POST("/sync/start", h.Sync.Start)
			protected.POST("/sync/stop", h.Sync.Stop)
			protected.POST("/sync/restart", h.Sync.Restart)
			protected.GET("/sync/status", h.Sync.Status)
			protected.GET("/sync/logs", h.Sync.Logs)

			// 对话
			protected.POST("/chat", h.Chat.Chat)

			// 个人资料与授权
			protected.GET("/profile", h.Profile.Get)
			protected.PUT("/profile", h.Profile.Update)
			protected.POST("/credentials/google", h.Credential.SaveGoogle)
		}
	}
}
