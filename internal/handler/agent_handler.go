package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/service"
)

type AgentHandler struct {
	svc *service.AgentService
}

func NewAgentHandler(svc *service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

// Check 前端保存智能体 ID 前先探测一下
// POST /api/v1/agents/check
func (h *AgentHandler) Check(c *gin.Context) {
	var req dto.CheckAgentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CheckAgentResp{IsValid: false, Error: "Agent ID is required"})
		return
	}

	resp, err := h.svc.Check(c.Request.Context(), req)
	if err != nil {
		// 与成功时同样的结构，前端只看 is_valid / error
		c.JSON(apperr.HTTPStatus(err), dto.CheckAgentResp{IsValid: false, Error: apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}
