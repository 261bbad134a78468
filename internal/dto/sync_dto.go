package dto

import "time"

// StartSyncReq 启动 / 重启同步任务
type StartSyncReq struct {
	AgentID  string `json:"agent_id"`
	FolderID string `json:"folder_id"`
}

// StopSyncReq 停止同步任务
type StopSyncReq struct {
	AgentID string `json:"agent_id"`
}

// SyncLogListReq 查询同步日志
type SyncLogListReq struct {
	Limit int `form:"limit"`
}

// SyncJobResp 返回给前端的任务状态
type SyncJobResp struct {
	JobID        string     `json:"job_id"`
	AgentID      string     `json:"agent_id"`
	FolderID     string     `json:"folder_id"`
	IsActive     bool       `json:"is_active"`
	Scheduled    bool       `json:"scheduled"` // 本进程是否持有定时器
	LastSyncTime time.Time  `json:"last_sync_time"`
	NextSyncTime time.Time  `json:"next_sync_time"`
	StoppedAt    *time.Time `json:"stopped_at,omitempty"`
}

type SyncStatusResp struct {
	ActiveJobs []SyncJobResp `json:"active_jobs"`
}

type SyncLogResp struct {
	ID        uint      `json:"id"`
	FileID    string    `json:"file_id"`
	FileName  string    `json:"file_name"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type SyncLogListResp struct {
	Logs []SyncLogResp `json:"logs"`
}
