package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"hanna-ai/internal/dto"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
)

// 单次查询最多返回的条数
const maxLogLimit = 200

// LogEntry 一条同步结果。任务级错误时 FileID / FileName 为空
type LogEntry struct {
	UserID   string
	JobID    string
	FileID   string
	FileName string
	Status   string
	Message  string
	Meta     map[string]string
}

// ActivityLog 只追加的同步活动日志
type ActivityLog struct {
	repo         repository.SyncLogRepository
	defaultLimit int
	now          func() time.Time
}

func NewActivityLog(repo repository.SyncLogRepository, defaultLimit int) *ActivityLog {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &ActivityLog{repo: repo, defaultLimit: defaultLimit, now: time.Now}
}

// Append 纯插入：不去重，不限量
func (a *ActivityLog) Append(ctx context.Context, e LogEntry) error {
	row := &model.SyncLog{
		UserID:    e.UserID,
		JobID:     e.JobID,
		FileID:    e.FileID,
		FileName:  e.FileName,
		Status:    e.Status,
		Message:   e.Message,
		Timestamp: a.now().UTC(),
	}
	if len(e.Meta) > 0 {
		raw, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("encode log meta: %w", err)
		}
		row.Meta = datatypes.JSON(raw)
	}
	return a.repo.Append(ctx, row)
}

// Query 最新的在前。limit <= 0 用默认值，超过上限截断
func (a *ActivityLog) Query(ctx context.Context, userID string, limit int) ([]model.SyncLog, error) {
	if limit <= 0 {
		limit = a.defaultLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return a.repo.ListByUser(ctx, userID, limit)
}

func toLogResp(logs []model.SyncLog) *dto.SyncLogListResp {
	list := make([]dto.SyncLogResp, 0, len(logs))
	for _, l := range logs {
		list = append(list, dto.SyncLogResp{
			ID:        l.ID,
			FileID:    l.FileID,
			FileName:  l.FileName,
			Status:    l.Status,
			Message:   l.Message,
			Timestamp: l.Timestamp,
		})
	}
	return &dto.SyncLogListResp{Logs: list}
}
