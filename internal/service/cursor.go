package service

import (
	"context"
	"time"

	"hanna-ai/internal/repository"
)

// Cursor 每个 (用户, 文件夹) 的同步水位线，只处理水位线之后修改过的文件
type Cursor struct {
	repo repository.CursorRepository
}

func NewCursor(repo repository.CursorRepository) *Cursor {
	return &Cursor{repo: repo}
}

// Get 从未同步过时返回 nil
func (c *Cursor) Get(ctx context.Context, userID, folderID string) (*time.Time, error) {
	fs, err := c.repo.Get(ctx, userID, folderID)
	if err != nil || fs == nil {
		return nil, err
	}
	t := fs.LastSyncTime
	return &t, nil
}

// Advance 直接覆盖，不取 max
func (c *Cursor) Advance(ctx context.Context, userID, folderID string, t time.Time) error {
	return c.repo.Set(ctx, userID, folderID, t.UTC())
}
