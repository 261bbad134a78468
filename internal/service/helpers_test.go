package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
	"hanna-ai/internal/data"
	"hanna-ai/internal/drive"
	"hanna-ai/internal/knowledge"
	"hanna-ai/internal/repository"
	"hanna-ai/internal/scheduler"
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

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeDrive 同时实现 Connector 和 Service。ListFiles 故意忽略 modifiedAfter，返回全部文件
type fakeDrive struct {
	mu         sync.Mutex
	files      []drive.File
	content    map[string]string
	failIDs    map[string]bool
	connectErr error
	listErr    error
	listPanic  bool
	listCalls  []*time.Time
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{content: map[string]string{}, failIDs: map[string]bool{}}
}

func (d *fakeDrive) put(f drive.File, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.files {
		if d.files[i].ID == f.ID {
			d.files[i] = f
			d.content[f.ID] = body
			return
		}
	}
	d.files = append(d.files, f)
	d.content[f.ID] = body
}

func (d *fakeDrive) Connect(ctx context.Context, refreshToken string) (drive.Service, error) {
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	return d, nil
}

func (d *fakeDrive) ListFiles(ctx context.Context, folderID string, modifiedAfter *time.Time) ([]drive.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listCalls = append(d.listCalls, modifiedAfter)
	if d.listPanic {
		panic("drive client exploded")
	}
	if d.listErr != nil {
		return nil, d.listErr
	}
	return append([]drive.File(nil), d.files...), nil
}

func (d *fakeDrive) Download(ctx context.Context, fileID string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failIDs[fileID] {
		return nil, apperr.New(apperr.ErrExternalService, "download failed")
	}
	return []byte(d.content[fileID]), nil
}

func (d *fakeDrive) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	return d.Download(ctx, fileID)
}

func (d *fakeDrive) listCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listCalls)
}

// fakeKB 内存知识库
type fakeKB struct {
	mu         sync.Mutex
	sources    map[string]string // name -> content
	adds       int
	updates    int
	retrains   int
	addErr     error
	retrainErr error
	chatAgent  string
}

func newFakeKB() *fakeKB {
	return &fakeKB{sources: map[string]string{}}
}

func (k *fakeKB) AddSource(ctx context.Context, agentID, name, content string) (*knowledge.Source, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.addErr != nil {
		return nil, k.addErr
	}
	k.adds++
	k.sources[name] = content
	return &knowledge.Source{ID: name, Name: name}, nil
}

func (k *fakeKB) UpdateSource(ctx context.Context, sourceID, name, content string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.updates++
	k.sources[name] = content
	return nil
}

func (k *fakeKB) ListSources(ctx context.Context, agentID string) ([]knowledge.Source, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	var out []knowledge.Source
	for name := range k.sources {
		out = append(out, knowledge.Source{ID: name, Name: name})
	}
	return out, nil
}

func (k *fakeKB) DeleteSource(ctx context.Context, sourceID string) error { return nil }

func (k *fakeKB) Retrain(ctx context.Context, agentID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.retrains++
	return k.retrainErr
}

func (k *fakeKB) Chat(ctx context.Context, agentID, message string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.chatAgent = agentID
	return "echo: " + message, nil
}

func (k *fakeKB) CheckAgent(ctx context.Context, agentID string) (knowledge.AgentCheck, error) {
	if agentID == "offline" {
		return knowledge.AgentCheck{}, errors.New("dial tcp: timeout")
	}
	if agentID == "missing" {
		return knowledge.AgentCheck{Reason: "Agent ID not found (404)"}, nil
	}
	return knowledge.AgentCheck{Valid: true}, nil
}

func (k *fakeKB) retrainCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.retrains
}

// fakeCreds 除 missing 集合里的用户外都有授权
type fakeCreds struct {
	missing map[string]bool
}

func (c fakeCreds) Resolve(ctx context.Context, userID string) (string, error) {
	if c.missing[userID] {
		return "", apperr.New(apperr.ErrAuth, "google drive is not connected")
	}
	return fmt.Sprintf("refresh-%s", userID), nil
}

// harness 组装一套完整的同步子系统
type harness struct {
	db       *gorm.DB
	clock    *fakeClock
	drive    *fakeDrive
	kb       *fakeKB
	creds    fakeCreds
	jobs     repository.SyncJobRepository
	cursors  repository.CursorRepository
	logs     *ActivityLog
	locker   data.PassLocker
	executor *SyncExecutor
	sched    *scheduler.Scheduler
	svc      *SyncService
}

func newHarness(t *testing.T, interval time.Duration) *harness {
	t.Helper()
	h := &harness{
		db:     newTestDB(t),
		clock:  &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		drive:  newFakeDrive(),
		kb:     newFakeKB(),
		creds:  fakeCreds{missing: map[string]bool{}},
		locker: data.NewLocalLocker(),
	}
	cfg := conf.SyncConfig{
		Interval:    interval,
		PassTimeout: time.Minute,
		LockTTL:     time.Minute,
		ProviderTag: "GoogleDrive",
		LogLimit:    50,
	}
	logger := zap.NewNop()

	h.jobs = repository.NewSyncJobRepository(h.db)
	h.cursors = repository.NewCursorRepository(h.db)
	h.logs = NewActivityLog(repository.NewSyncLogRepository(h.db), cfg.LogLimit)
	h.logs.now = h.clock.Now

	h.executor = NewSyncExecutor(cfg, h.creds, h.drive, h.kb, h.logs, NewCursor(h.cursors), h.jobs, h.locker, nil, logger)
	h.executor.now = h.clock.Now

	h.sched = scheduler.New(logger)
	h.svc = NewSyncService(cfg, h.jobs, h.logs, h.executor, h.sched, logger)
	h.svc.now = h.clock.Now

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.sched.StopAll(ctx)
	})
	return h
}

func (h *harness) allLogs(t *testing.T, userID string) []LogEntry {
	t.Helper()
	rows, err := h.logs.Query(context.Background(), userID, maxLogLimit)
	if err != nil {
		t.Fatalf("query logs: %v", err)
	}
	out := make([]LogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, LogEntry{UserID: r.UserID, JobID: r.JobID, FileID: r.FileID, FileName: r.FileName, Status: r.Status, Message: r.Message})
	}
	return out
}

func (h *harness) cursor(t *testing.T, userID, folderID string) *time.Time {
	t.Helper()
	c, err := NewCursor(h.cursors).Get(context.Background(), userID, folderID)
	if err != nil {
		t.Fatalf("get cursor: %v", err)
	}
	return c
}
