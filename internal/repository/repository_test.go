package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
	"hanna-ai/internal/data"
	"hanna-ai/internal/model"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := data.OpenDB(conf.DataConfig{
		DatabaseDriver: "sqlite",
		DatabaseSource: filepath.Join(t.TempDir(), "hanna.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSyncJobRepository_UpsertReactivates(t *testing.T) {
	ctx := context.Background()
	repo := NewSyncJobRepository(newTestDB(t))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	job := &model.SyncJob{
		JobID: model.JobID("u1", "a1"), UserID: "u1", AgentID: "a1", FolderID: "f1",
		IsActive: true, LastSyncTime: now, NextSyncTime: now.Add(15 * time.Minute),
	}
	if err := repo.Upsert(ctx, job); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Deactivate(ctx, job.JobID, now.Add(time.Minute)); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	stopped, err := repo.Get(ctx, "u1_a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stopped.IsActive || stopped.StoppedAt == nil {
		t.Fatalf("job after deactivate = %+v", stopped)
	}

	// 再次 start：换文件夹，清掉 stopped_at
	again := &model.SyncJob{
		JobID: "u1_a1", UserID: "u1", AgentID: "a1", FolderID: "f2",
		IsActive: true, LastSyncTime: now, NextSyncTime: now.Add(15 * time.Minute),
	}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err := repo.Get(ctx, "u1_a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsActive || got.FolderID != "f2" || got.StoppedAt != nil {
		t.Errorf("reactivated job = %+v", got)
	}

	active, err := repo.ListActive(ctx)
	if err != nil || len(active) != 1 {
		t.Errorf("ListActive = %v, %v; want 1 job", active, err)
	}
}

func TestSyncJobRepository_DeactivateKeepsFirstStop(t *testing.T) {
	ctx := context.Background()
	repo := NewSyncJobRepository(newTestDB(t))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_ = repo.Upsert(ctx, &model.SyncJob{JobID: "u1_a1", UserID: "u1", AgentID: "a1", FolderID: "f1", IsActive: true})
	_ = repo.Deactivate(ctx, "u1_a1", now)
	_ = repo.Deactivate(ctx, "u1_a1", now.Add(time.Hour))

	got, _ := repo.Get(ctx, "u1_a1")
	if got.StoppedAt == nil || !got.StoppedAt.Equal(now) {
		t.Errorf("StoppedAt = %v, want %v", got.StoppedAt, now)
	}

	// 未知任务不报错
	if err := repo.Deactivate(ctx, "nobody_none", now); err != nil {
		t.Errorf("Deactivate unknown job: %v", err)
	}
}

func TestSyncJobRepository_GetNotFound(t *testing.T) {
	repo := NewSyncJobRepository(newTestDB(t))
	_, err := repo.Get(context.Background(), "missing")
	if !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestSyncJobRepository_ListActiveByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewSyncJobRepository(newTestDB(t))

	for _, j := range []model.SyncJob{
		{JobID: "u1_a1", UserID: "u1", AgentID: "a1", FolderID: "f", IsActive: true},
		{JobID: "u1_a2", UserID: "u1", AgentID: "a2", FolderID: "f", IsActive: false},
		{JobID: "u2_a1", UserID: "u2", AgentID: "a1", FolderID: "f", IsActive: true},
	} {
		j := j
		if err := repo.Upsert(ctx, &j); err != nil {
			t.Fatalf("Upsert %s: %v", j.JobID, err)
		}
	}

	jobs, err := repo.ListActiveByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveByUser: %v", err)
	}
	if len(jobs) != 1 || jobs[0].JobID != "u1_a1" {
		t.Errorf("jobs = %+v, want only u1_a1", jobs)
	}
}

func TestSyncLogRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewSyncLogRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		entry := &model.SyncLog{UserID: "u1", FileName: name, Status: model.SyncStatusSuccess, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	_ = repo.Append(ctx, &model.SyncLog{UserID: "u2", FileName: "other.txt", Status: model.SyncStatusError, Timestamp: base.Add(time.Hour)})

	logs, err := repo.ListByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len = %d, want 2", len(logs))
	}
	if logs[0].FileName != "c.txt" || logs[1].FileName != "b.txt" {
		t.Errorf("order = %s, %s; want c.txt, b.txt", logs[0].FileName, logs[1].FileName)
	}
}

func TestCursorRepository_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewCursorRepository(newTestDB(t))

	got, err := repo.Get(ctx, "u1", "f1")
	if err != nil || got != nil {
		t.Fatalf("Get on empty = %v, %v; want nil, nil", got, err)
	}

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(15 * time.Minute)
	if err := repo.Set(ctx, "u1", "f1", t1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, "u1", "f1", t2); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err = repo.Get(ctx, "u1", "f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.LastSyncTime.Equal(t2) {
		t.Errorf("LastSyncTime = %v, want %v", got.LastSyncTime, t2)
	}
}

func TestCredentialRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepository(newTestDB(t))

	if _, err := repo.Get(ctx, "u1"); !apperr.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Get missing err = %v, want NOT_FOUND", err)
	}

	_ = repo.Save(ctx, &model.UserCredential{UserID: "u1", SealedRefreshToken: "old"})
	if err := repo.Save(ctx, &model.UserCredential{UserID: "u1", SealedRefreshToken: "new"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cred, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred.SealedRefreshToken != "new" {
		t.Errorf("token = %q, want new", cred.SealedRefreshToken)
	}
}

func TestUserRepository_SaveUpdatesProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	_ = repo.Save(ctx, &model.User{UID: "u1", Email: "a@example.com"})
	if err := repo.Save(ctx, &model.User{UID: "u1", Email: "a@example.com", AgentID: "bot-1", FolderID: "folder-9"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	u, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.AgentID != "bot-1" || u.FolderID != "folder-9" {
		t.Errorf("user = %+v", u)
	}
}
