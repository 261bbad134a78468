package handler

import (
	"github.com/gin-gonic/gin"

	"hanna-ai/internal/dto"
	"hanna-ai/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resp)
}

// Update PUT /api/v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), currentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resp)
}
