package model

// User 用户资料，主键是身份提供方给的 uid
type User struct {
	UID         string `gorm:"primaryKey;size:128" json:"uid"`
	Email       string `gorm:"size:255" json:"email"`
	DisplayName string `gorm:"size:255" json:"display_name"`

	// 前端个人页保存的默认智能体 / Drive 文件夹
	AgentID  string `gorm:"size:128" json:"agent_id"`
	FolderID string `gorm:"size:255" json:"folder_id"`

	Timestamps
}

func (User) TableName() string { return "users" }
