package handler

import (
	"github.com/gin-gonic/gin"

	"hanna-ai/internal/dto"
	"hanna-ai/internal/service"
)

type CredentialHandler struct {
	svc *service.CredentialService
}

func NewCredentialHandler(svc *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{svc: svc}
}

// SaveGoogle 保存 Google Drive 授权
// POST /api/v1/credentials/google
func (h *CredentialHandler) SaveGoogle(c *gin.Context) {
	var req dto.GoogleCredentialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.Save(c.Request.Context(), currentUser(c), req); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"connected": true})
}
