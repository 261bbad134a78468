package model

import "time"

// UserCredential 用户的 Google Drive 授权，refresh token 加密存储
type UserCredential struct {
	UserID             string    `gorm:"primaryKey;size:128" json:"user_id"`
	SealedRefreshToken string    `gorm:"type:text;not null" json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (UserCredential) TableName() string { return "user_credentials" }
