package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hanna-ai/internal/model"
)

type CursorRepository interface {
	// Get 没有记录时返回 nil, nil
	Get(ctx context.Context, userID, folderID string) (*model.FolderSync, error)
	Set(ctx context.Context, userID, folderID string, t time.Time) error
}

type cursorRepository struct {
	db *gorm.DB
}

func NewCursorRepository(db *gorm.DB) CursorRepository {
	return &cursorRepository{db: db}
}

func (r *cursorRepository) Get(ctx context.Context, userID, folderID string) (*model.FolderSync, error) {
	var fs model.FolderSync
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND folder_id = ?", userID, folderID).
		First(&fs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func (r *cursorRepository) Set(ctx context.Context, userID, folderID string, t time.Time) error {
	fs := model.FolderSync{UserID: userID, FolderID: folderID, LastSyncTime: t}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "folder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_sync_time", "updated_at"}),
	}).Create(&fs).Error
}
