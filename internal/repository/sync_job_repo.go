package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/model"
)

type SyncJobRepository interface {
	Upsert(ctx context.Context, job *model.SyncJob) error
	Get(ctx context.Context, jobID string) (*model.SyncJob, error)
	Deactivate(ctx context.Context, jobID string, stoppedAt time.Time) error
	ListActive(ctx context.Context) ([]model.SyncJob, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.SyncJob, error)
	MarkSynced(ctx context.Context, jobID string, last, next time.Time) error
}

type syncJobRepository struct {
	db *gorm.DB
}

func NewSyncJobRepository(db *gorm.DB) SyncJobRepository {
	return &syncJobRepository{db: db}
}

// Upsert 按 job_id 插入或整体覆盖 (created_at 保留)
func (r *syncJobRepository) Upsert(ctx context.Context, job *model.SyncJob) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "agent_id", "folder_id", "is_active",
			"last_sync_time", "next_sync_time", "stopped_at", "updated_at",
		}),
	}).Create(job).Error
}

func (r *syncJobRepository) Get(ctx context.Context, jobID string) (*model.SyncJob, error) {
	var job model.SyncJob
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "sync job not found", err)
		}
		return nil, err
	}
	return &job, nil
}

// Deactivate 只作用于仍在运行的任务，重复 stop 不会刷新 stopped_at
func (r *syncJobRepository) Deactivate(ctx context.Context, jobID string, stoppedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.SyncJob{}).
		Where("job_id = ? AND is_active = ?", jobID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"stopped_at": stoppedAt,
		}).Error
}

func (r *syncJobRepository) ListActive(ctx context.Context) ([]model.SyncJob, error) {
	var jobs []model.SyncJob
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("job_id").Find(&jobs).Error
	return jobs, err
}

func (r *syncJobRepository) ListActiveByUser(ctx context.Context, userID string) ([]model.SyncJob, error) {
	var jobs []model.SyncJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("job_id").
		Find(&jobs).Error
	return jobs, err
}

// MarkSynced 一次 pass 结束后推进时间戳。任务已被删除时静默忽略
func (r *syncJobRepository) MarkSynced(ctx context.Context, jobID string, last, next time.Time) error {
	return r.db.WithContext(ctx).Model(&model.SyncJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"last_sync_time": last,
			"next_sync_time": next,
		}).Error
}
