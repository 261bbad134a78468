package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
	"hanna-ai/internal/data"
	"hanna-ai/internal/drive"
	"hanna-ai/internal/knowledge"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
)

// 日志、水位线这类收尾写入不受 pass 超时影响
const bookkeepingTimeout = 10 * time.Second

// CredentialResolver 取出用户的 Drive refresh token
type CredentialResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// PassResult 一次同步的统计
type PassResult struct {
	JobID     string `json:"job_id"`
	Files     int    `json:"files"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Warnings  int    `json:"warnings"`
	Retrained bool   `json:"retrained"`
	// 上一次 pass 还没结束，本次被跳过
	Skipped bool `json:"skipped"`
	// 任务级失败 (授权、列目录、收尾写入)
	Err string `json:"error,omitempty"`
}

// SyncExecutor 执行一个任务的一次同步。Run 不返回错误也不 panic，所有失败都落到活动日志
type SyncExecutor struct {
	credentials CredentialResolver
	connector   drive.Connector
	kb          knowledge.Provider
	logs        *ActivityLog
	cursor      *Cursor
	jobs        repository.SyncJobRepository
	locker      data.PassLocker
	archive     data.TextArchive // 可为 nil

	interval    time.Duration
	lockTTL     time.Duration
	providerTag string

	logger *zap.Logger
	now    func() time.Time
}

func NewSyncExecutor(
	cfg conf.SyncConfig,
	credentials CredentialResolver,
	connector drive.Connector,
	kb knowledge.Provider,
	logs *ActivityLog,
	cursor *Cursor,
	jobs repository.SyncJobRepository,
	locker data.PassLocker,
	archive data.TextArchive,
	logger *zap.Logger,
) *SyncExecutor {
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = cfg.Interval
	}
	return &SyncExecutor{
		credentials: credentials,
		connector:   connector,
		kb:          kb,
		logs:        logs,
		cursor:      cursor,
		jobs:        jobs,
		locker:      locker,
		archive:     archive,
		interval:    cfg.Interval,
		lockTTL:     lockTTL,
		providerTag: cfg.ProviderTag,
		logger:      logger.Named("sync"),
		now:         time.Now,
	}
}

func lockKey(jobID string) string {
	return "hanna:sync:lock:" + jobID
}

// Run 执行一次 pass
func (e *SyncExecutor) Run(ctx context.Context, job model.SyncJob) (res PassResult) {
	res.JobID = job.JobID
	log := e.logger.With(zap.String("job_id", job.JobID), zap.String("folder_id", job.FolderID))

	// 0. 同一任务不重叠：拿不到锁就跳过，不排队
	unlock, ok, err := e.locker.TryLock(ctx, lockKey(job.JobID), e.lockTTL)
	switch {
	case err != nil:
		log.Warn("pass lock unavailable, running without it", zap.Error(err))
	case !ok:
		log.Info("previous pass still running, skipping")
		res.Skipped = true
		return res
	default:
		defer unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("sync pass panicked", zap.Any("panic", r))
			res.Err = fmt.Sprintf("sync pass failed: %v", r)
			e.jobError(ctx, job, res.Err)
		}
	}()

	start := e.now().UTC()
	if err := e.pass(ctx, job, start, &res); err != nil {
		log.Error("sync pass failed", zap.Error(err))
		res.Err = err.Error()
		e.jobError(ctx, job, res.Err)
		return res
	}

	log.Info("sync pass finished",
		zap.Int("files", res.Files),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("warnings", res.Warnings),
		zap.Bool("retrained", res.Retrained),
		zap.Duration("took", e.now().Sub(start)),
	)
	return res
}

func (e *SyncExecutor) pass(ctx context.Context, job model.SyncJob, start time.Time, res *PassResult) error {
	// 1. 授权
	token, err := e.credentials.Resolve(ctx, job.UserID)
	if err != nil {
		return err
	}
	svc, err := e.connector.Connect(ctx, token)
	if err != nil {
		return err
	}

	// 2. 增量列表：只要水位线之后修改过的
	since, err := e.cursor.Get(ctx, job.UserID, job.FolderID)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "read sync cursor", err)
	}
	files, err := svc.ListFiles(ctx, job.FolderID, since)
	if err != nil {
		return err
	}
	files = modifiedAfter(files, since)
	for _, f := range files {
		if f.ModifiedTime.IsZero() {
			e.logger.Warn("drive file has no readable modified time, syncing anyway",
				zap.String("job_id", job.JobID),
				zap.String("file_id", f.ID),
				zap.String("file_name", f.Name))
		}
	}
	res.Files = len(files)

	// 3. 逐个文件，互不影响
	for _, f := range files {
		e.syncFile(ctx, svc, job, f, res)
	}

	// 4. 有文件就重新训练一次
	if len(files) > 0 {
		if err := e.kb.Retrain(ctx, job.AgentID); err != nil {
			e.jobError(ctx, job, "retrain failed: "+err.Error())
		} else {
			res.Retrained = true
		}
	}

	// 5. 无论单个文件成败都推进时间戳，避免同一个坏文件反复重试
	return e.advance(ctx, job, start)
}

func (e *SyncExecutor) syncFile(ctx context.Context, svc drive.Service, job model.SyncJob, f drive.File, res *PassResult) {
	meta := map[string]string{"mime_type": f.MimeType}

	defer func() {
		if r := recover(); r != nil {
			res.Failed++
			e.fileEntry(ctx, job, f, model.SyncStatusError, fmt.Sprintf("sync failed: %v", r), meta)
		}
	}()

	// a. 提取文本
	text, err := drive.ExtractText(ctx, svc, f)
	if err != nil {
		res.Failed++
		e.fileEntry(ctx, job, f, model.SyncStatusError, "extract text: "+err.Error(), meta)
		return
	}

	// b. 空内容只告警
	if strings.TrimSpace(text) == "" {
		res.Warnings++
		e.fileEntry(ctx, job, f, model.SyncStatusWarning, "no text content extracted, skipped", meta)
		return
	}

	e.archiveText(ctx, job, f, text)

	// c. 按名字 upsert
	name := knowledge.SourceName(e.providerTag, f.Name, f.ID)
	meta["source_name"] = name
	action, err := knowledge.UpsertSource(ctx, e.kb, job.AgentID, name, text)
	if err != nil {
		res.Failed++
		e.fileEntry(ctx, job, f, model.SyncStatusError, "upload to knowledge base: "+err.Error(), meta)
		return
	}
	meta["action"] = string(action)
	res.Succeeded++
	e.fileEntry(ctx, job, f, model.SyncStatusSuccess, fmt.Sprintf("source %s %s", name, action), meta)
}

func (e *SyncExecutor) advance(ctx context.Context, job model.SyncJob, start time.Time) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	if err := e.jobs.MarkSynced(wctx, job.JobID, start, start.Add(e.interval)); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "update job sync time", err)
	}
	if err := e.cursor.Advance(wctx, job.UserID, job.FolderID, start); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "advance sync cursor", err)
	}
	return nil
}

func (e *SyncExecutor) archiveText(ctx context.Context, job model.SyncJob, f drive.File, text string) {
	if e.archive == nil {
		return
	}
	if err := e.archive.Put(ctx, data.ArchiveKey(job.UserID, f.ID), text); err != nil {
		e.logger.Warn("archive extracted text", zap.String("file_id", f.ID), zap.Error(err))
	}
}

func (e *SyncExecutor) fileEntry(ctx context.Context, job model.SyncJob, f drive.File, status, msg string, meta map[string]string) {
	e.appendLog(ctx, LogEntry{
		UserID:   job.UserID,
		JobID:    job.JobID,
		FileID:   f.ID,
		FileName: f.Name,
		Status:   status,
		Message:  msg,
		Meta:     meta,
	})
}

func (e *SyncExecutor) jobError(ctx context.Context, job model.SyncJob, msg string) {
	e.appendLog(ctx, LogEntry{
		UserID:  job.UserID,
		JobID:   job.JobID,
		Status:  model.SyncStatusError,
		Message: msg,
	})
}

// 写日志失败只记到进程日志
func (e *SyncExecutor) appendLog(ctx context.Context, entry LogEntry) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()
	if err := e.logs.Append(wctx, entry); err != nil {
		e.logger.Error("append sync log",
			zap.String("job_id", entry.JobID),
			zap.String("file_id", entry.FileID),
			zap.String("status", entry.Status),
			zap.Error(err))
	}
}

// 服务端过滤之外再按水位线严格过滤一次。
// 修改时间未知 (零值) 的文件已经过服务端过滤，保留
func modifiedAfter(files []drive.File, since *time.Time) []drive.File {
	if since == nil {
		return files
	}
	out := files[:0:0]
	for _, f := range files {
		if f.ModifiedTime.IsZero() || f.ModifiedTime.After(*since) {
			out = append(out, f)
		}
	}
	return out
}
