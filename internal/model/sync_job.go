package model

import (
	"fmt"
	"time"
)

// SyncJob 一个用户 + 一个 Chatbase 智能体 对应一个同步任务
type SyncJob struct {
	// JobID = userID_agentID，天然防止同一对重复建任务
	JobID    string `gorm:"primaryKey;size:255" json:"job_id"`
	UserID   string `gorm:"size:128;not null;index" json:"user_id"`
	AgentID  string `gorm:"size:128;not null" json:"agent_id"`
	FolderID string `gorm:"size:255;not null" json:"folder_id"`

	// 有定时器在跑时为 true；stop 只置 false，不删记录
	IsActive bool `gorm:"not null;default:false;index" json:"is_active"`

	LastSyncTime time.Time  `json:"last_sync_time"`
	NextSyncTime time.Time  `json:"next_sync_time"`
	StoppedAt    *time.Time `json:"stopped_at,omitempty"`

	Timestamps
}

func (SyncJob) TableName() string { return "sync_jobs" }

// JobID 由 userID 和 agentID 拼出任务 ID
func JobID(userID, agentID string) string {
	return fmt.Sprintf("%s_%s", userID, agentID)
}
