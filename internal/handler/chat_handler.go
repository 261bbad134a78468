package handler

import (
	"github.com/gin-gonic/gin"

	"hanna-ai/internal/dto"
	"hanna-ai/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat 转发一条消息给智能体，非流式
// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Chat(c.Request.Context(), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resp)
}
