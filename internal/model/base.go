package model

import "time"

// Timestamps 替代 gorm.Model：本项目的主键都是业务字符串，不用自增 ID
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
