package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
	"hanna-ai/internal/dto"
	"hanna-ai/internal/model"
	"hanna-ai/internal/repository"
	"hanna-ai/internal/scheduler"
)

// PassRunner 执行一次同步，SyncExecutor 实现
type PassRunner interface {
	Run(ctx context.Context, job model.SyncJob) PassResult
}

// SyncService 任务注册表：持久化的 sync_jobs 是事实来源，内存里的定时器可以随时从它重建
type SyncService struct {
	jobs     repository.SyncJobRepository
	logs     *ActivityLog
	executor PassRunner
	sched    *scheduler.Scheduler

	interval    time.Duration
	passTimeout time.Duration

	logger *zap.Logger
	now    func() time.Time
}

func NewSyncService(
	cfg conf.SyncConfig,
	jobs repository.SyncJobRepository,
	logs *ActivityLog,
	executor PassRunner,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		jobs:        jobs,
		logs:        logs,
		executor:    executor,
		sched:       sched,
		interval:    cfg.Interval,
		passTimeout: cfg.PassTimeout,
		logger:      logger.Named("registry"),
		now:         time.Now,
	}
}

func validateIDs(userID, agentID, folderID string, needFolder bool) error {
	if userID == "" {
		return apperr.New(apperr.ErrAuth, "unauthenticated")
	}
	if strings.TrimSpace(agentID) == "" {
		return apperr.New(apperr.ErrValidation, "agent_id is required")
	}
	if needFolder && strings.TrimSpace(folderID) == "" {
		return apperr.New(apperr.ErrValidation, "folder_id is required")
	}
	return nil
}

// Start 创建或重新激活任务，注册定时器，并同步跑一次
func (s *SyncService) Start(ctx context.Context, userID, agentID, folderID string) (string, error) {
	// 1. 校验
	if err := validateIDs(userID, agentID, folderID, true); err != nil {
		return "", err
	}
	agentID, folderID = strings.TrimSpace(agentID), strings.TrimSpace(folderID)

	// 2. 落库
	now := s.now().UTC()
	job := model.SyncJob{
		JobID:        model.JobID(userID, agentID),
		UserID:       userID,
		AgentID:      agentID,
		FolderID:     folderID,
		IsActive:     true,
		LastSyncTime: now,
		NextSyncTime: now.Add(s.interval),
	}
	if err := s.jobs.Upsert(ctx, &job); err != nil {
		return "", apperr.Wrap(apperr.ErrInternal, "save sync job", err)
	}

	// 3. 定时器 (同 ID 旧定时器会被替换)
	s.sched.Schedule(job.JobID, s.interval, s.tick(job.JobID))

	// 4. 立即跑一次。请求断开也要跑完
	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.passTimeout)
	defer cancel()
	res := s.executor.Run(passCtx, job)

	s.logger.Info("sync job started",
		zap.String("job_id", job.JobID),
		zap.String("folder_id", folderID),
		zap.Int("files", res.Files),
		zap.Bool("skipped", res.Skipped))
	return job.JobID, nil
}

// Stop 取消后续触发并标记为停止。未知或已停止的任务不报错；正在跑的 pass 不会被打断
func (s *SyncService) Stop(ctx context.Context, userID, agentID string) error {
	if err := validateIDs(userID, agentID, "", false); err != nil {
		return err
	}
	jobID := model.JobID(userID, strings.TrimSpace(agentID))

	cancelled := s.sched.Cancel(jobID)
	if err := s.jobs.Deactivate(ctx, jobID, s.now().UTC()); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "stop sync job", err)
	}

	s.logger.Info("sync job stopped", zap.String("job_id", jobID), zap.Bool("had_timer", cancelled))
	return nil
}

// Restart = Stop + Start，用于换文件夹或定时器卡住时恢复
func (s *SyncService) Restart(ctx context.Context, userID, agentID, folderID string) (string, error) {
	if err := validateIDs(userID, agentID, folderID, true); err != nil {
		return "", err
	}
	if err := s.Stop(ctx, userID, agentID); err != nil {
		return "", err
	}
	return s.Start(ctx, userID, agentID, folderID)
}

// Recover 进程启动时为所有 is_active 的任务重新注册定时器
func (s *SyncService) Recover(ctx context.Context) (int, error) {
	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrInternal, "load active sync jobs", err)
	}
	for _, job := range jobs {
		s.sched.Schedule(job.JobID, s.interval, s.tick(job.JobID))
	}
	s.logger.Info("sync jobs recovered", zap.Int("count", len(jobs)))
	return len(jobs), nil
}

// RunOnce 手动执行一次已有的活跃任务，hanna sync run 使用
func (s *SyncService) RunOnce(ctx context.Context, userID, agentID string) (PassResult, error) {
	if err := validateIDs(userID, agentID, "", false); err != nil {
		return PassResult{}, err
	}
	job, err := s.jobs.Get(ctx, model.JobID(userID, strings.TrimSpace(agentID)))
	if err != nil {
		return PassResult{}, err
	}
	// 已停止的任务不能手动同步，否则会推进它的水位线
	if !job.IsActive {
		return PassResult{}, apperr.New(apperr.ErrValidation, "sync job "+job.JobID+" is stopped, start it first")
	}
	passCtx, cancel := context.WithTimeout(ctx, s.passTimeout)
	defer cancel()
	return s.executor.Run(passCtx, *job), nil
}

// Status 当前用户的活跃任务
func (s *SyncService) Status(ctx context.Context, userID string) (*dto.SyncStatusResp, error) {
	jobs, err := s.jobs.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "load sync jobs", err)
	}

	list := make([]dto.SyncJobResp, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, dto.SyncJobResp{
			JobID:        j.JobID,
			AgentID:      j.AgentID,
			FolderID:     j.FolderID,
			IsActive:     j.IsActive,
			Scheduled:    s.sched.Has(j.JobID),
			LastSyncTime: j.LastSyncTime,
			NextSyncTime: j.NextSyncTime,
			StoppedAt:    j.StoppedAt,
		})
	}
	return &dto.SyncStatusResp{ActiveJobs: list}, nil
}

// Logs 当前用户最近的同步日志
func (s *SyncService) Logs(ctx context.Context, userID string, limit int) (*dto.SyncLogListResp, error) {
	logs, err := s.logs.Query(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "load sync logs", err)
	}
	return toLogResp(logs), nil
}

// Shutdown 取消所有定时器，等待正在跑的 pass 结束
func (s *SyncService) Shutdown(ctx context.Context) error {
	return s.sched.StopAll(ctx)
}

// tick 每次触发都重新读任务：别的副本可能已经把它停掉
func (s *SyncService) tick(jobID string) scheduler.Task {
	return func(ctx context.Context) {
		job, err := s.jobs.Get(ctx, jobID)
		if err != nil {
			if apperr.Is(err, apperr.ErrNotFound) {
				s.sched.Cancel(jobID)
			}
			s.logger.Warn("load sync job for scheduled pass", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		if !job.IsActive {
			// ctx 已取消说明定时器已被 Stop / 替换，不能误删新注册的
			if ctx.Err() != nil {
				return
			}
			s.sched.Cancel(jobID)
			s.logger.Info("job no longer active, timer dropped", zap.String("job_id", jobID))
			return
		}

		// Stop 只取消后续触发，已开始的 pass 跑完为止
		passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.passTimeout)
		defer cancel()
		s.executor.Run(passCtx, *job)
	}
}
