package repository

import (
	"context"

	"gorm.io/gorm"

	"hanna-ai/internal/model"
)

type SyncLogRepository interface {
	Append(ctx context.Context, entry *model.SyncLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.SyncLog, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Append(ctx context.Context, entry *model.SyncLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser 最新的在前；同一时间戳按插入顺序倒序
func (r *syncLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.SyncLog, error) {
	var logs []model.SyncLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
