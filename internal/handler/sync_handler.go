package handler

import (
	"github.com/gin-gonic/gin"

	"hanna-ai/internal/dto"
	"hanna-ai/internal/service"
)

type SyncHandler struct {
	svc *service.SyncService
}

func NewSyncHandler(svc *service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// Start 启动同步任务，并立即同步一次
// POST /api/v1/sync/start
func (h *SyncHandler) Start(c *gin.Context) {
	var req dto.StartSyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	jobID, err := h.svc.Start(c.Request.Context(), currentUser(c), req.AgentID, req.FolderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"job_id": jobID})
}

// Stop 停止同步任务
// POST /api/v1/sync/stop
func (h *SyncHandler) Stop(c *gin.Context) {
	var req dto.StopSyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.Stop(c.Request.Context(), currentUser(c), req.AgentID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"stopped": true})
}

// Restart 换文件夹或恢复卡住的任务
// POST /api/v1/sync/restart
func (h *SyncHandler) Restart(c *gin.Context) {
	var req dto.StartSyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	jobID, err := h.svc.Restart(c.Request.Context(), currentUser(c), req.AgentID, req.FolderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"job_id": jobID})
}

// Status GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resp)
}

// Logs GET /api/v1/sync/logs?limit=N
func (h *SyncHandler) Logs(c *gin.Context) {
	var req dto.SyncLogListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Logs(c.Request.Context(), currentUser(c), req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, resp)
}
