package model

import "time"

// FolderSync 某用户某文件夹的同步水位线
type FolderSync struct {
	UserID       string    `gorm:"primaryKey;size:128" json:"user_id"`
	FolderID     string    `gorm:"primaryKey;size:255" json:"folder_id"`
	LastSyncTime time.Time `gorm:"not null" json:"last_sync_time"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (FolderSync) TableName() string { return "folder_syncs" }
