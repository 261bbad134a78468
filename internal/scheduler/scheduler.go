// Package scheduler 维护 任务ID -> 周期定时器 的映射。
// 每个任务一个 goroutine，tick 时同步执行任务函数，所以同一任务在本进程内不会重叠。
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task 一次定时触发要做的事。ctx 在任务被取消时结束
type Task func(ctx context.Context)

type entry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger.Named("scheduler"),
	}
}

// Schedule 注册周期任务。同一 id 已有定时器时先取消旧的，保证每个 id 至多一个
func (s *Scheduler) Schedule(id string, interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		old.cancel()
		delete(s.entries, id)
		s.logger.Debug("replaced existing timer", zap.String("job_id", id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{cancel: cancel, done: make(chan struct{})}
	s.entries[id] = e

	s.wg.Add(1)
	go s.loop(ctx, id, interval, task, e)
}

func (s *Scheduler) loop(ctx context.Context, id string, interval time.Duration, task Task, e *entry) {
	defer s.wg.Done()
	defer close(e.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 取消和 tick 同时就绪时不再执行
			if ctx.Err() != nil {
				return
			}
			s.run(ctx, id, task)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, id string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", zap.String("job_id", id), zap.Any("panic", r))
		}
	}()
	task(ctx)
}

// Cancel 取消后续触发，不等待正在执行的那一次。未注册的 id 返回 false
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.cancel()
	delete(s.entries, id)
	return true
}

func (s *Scheduler) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StopAll 取消全部定时器并等待正在执行的任务结束，ctx 到期则提前返回
func (s *Scheduler) StopAll(ctx context.Context) error {
	s.mu.Lock()
	for id, e := range s.entries {
		e.cancel()
		delete(s.entries, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
