package model

import (
	"time"

	"gorm.io/datatypes"
)

// 同步日志状态
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
	SyncStatusWarning = "warning"
)

// SyncLog 同步活动日志，只追加，不修改
type SyncLog struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID string `gorm:"size:128;not null;index:idx_sync_logs_user_time,priority:1" json:"user_id"`
	JobID  string `gorm:"size:255;index" json:"job_id"`

	// 任务级错误时 FileID / FileName 为空
	FileID   string `gorm:"size:255" json:"file_id"`
	FileName string `gorm:"size:512" json:"file_name"`

	Status  string `gorm:"size:20;not null" json:"status"` // success, error, warning
	Message string `gorm:"type:text" json:"message"`

	// 扩展字段: mime_type, source_name, action
	Meta datatypes.JSON `json:"meta,omitempty"`

	Timestamp time.Time `gorm:"not null;index:idx_sync_logs_user_time,priority:2" json:"timestamp"`
}

func (SyncLog) TableName() string { return "sync_logs" }
