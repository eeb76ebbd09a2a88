// Package scheduler 封装 gocron/v2，提供带暂停/恢复/手动触发能力的任务调度器.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/log"
)

// TaskFunc 是被调度的任务体.triggeredBy 为 system（到点触发）或 manual（手动触发）.
type TaskFunc func(ctx context.Context, triggeredBy string)

// entry 记录一个已注册任务的调度信息.
type entry struct {
	job      gocron.Job
	cronExpr string
	task     TaskFunc
	paused   bool
}

// JobView 任务的运行时视图.
type JobView struct {
	Name     string
	CronExpr string
	Paused   bool
	LastRun  *time.Time
	NextRun  *time.Time
}

// Scheduler 是定时任务调度器.
// 暂停只挡住到点触发：任务仍按计划醒来，但在暂停态直接跳过；
// 手动触发绕过暂停，总是运行.
type Scheduler struct {
	scheduler gocron.Scheduler
	entries   map[string]*entry
	mu        sync.RWMutex
	logger    *zerolog.Logger
	baseCtx   context.Context
	running   bool
}

// NewScheduler 创建调度器实例.baseCtx 会传给每次任务执行.
func NewScheduler(baseCtx context.Context) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if baseCtx == nil {
		baseCtx = context.Background()
	}

	return &Scheduler{
		scheduler: s,
		entries:   make(map[string]*entry),
		logger:    log.Logger(),
		baseCtx:   baseCtx,
	}, nil
}

// AddCron 注册一个 cron 任务.重名注册报错.
func (s *Scheduler) AddCron(name, cronExpr string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	wrapped := func() {
		if s.IsPaused(name) {
			s.logger.Debug().Str("job", name).Msg("job paused, skipping scheduled run")
			return
		}

		task(s.baseCtx, "system")
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrapped),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	s.entries[name] = &entry{job: j, cronExpr: cronExpr, task: task}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("cron job registered")

	return nil
}

// Start 启动调度循环.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.entries)).Msg("scheduler started")
}

// Shutdown 停止调度器，等待在途任务结束.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false

	return s.scheduler.Shutdown()
}

// Pause 暂停任务的到点触发.
func (s *Scheduler) Pause(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	e.paused = true

	s.logger.Info().Str("job", name).Msg("job paused")

	return nil
}

// Resume 恢复任务的到点触发.
func (s *Scheduler) Resume(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	e.paused = false

	s.logger.Info().Str("job", name).Msg("job resumed")

	return nil
}

// Trigger 手动触发任务立即运行一次，绕过暂停态.
// 任务在新 goroutine 中执行，triggeredBy 为 manual.
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	e, exists := s.entries[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go e.task(s.baseCtx, "manual")

	return nil
}

// IsPaused 返回任务是否处于暂停态.未知任务视为未暂停.
func (s *Scheduler) IsPaused(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isPaused(name)
}

// isPaused 不加锁版本，调用方负责持锁.
func (s *Scheduler) isPaused(name string) bool {
	if e, exists := s.entries[name]; exists {
		return e.paused
	}

	return false
}

// Has 返回任务是否已注册.
func (s *Scheduler) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[name]

	return exists
}

// GetJob 返回单个任务的运行时视图.
func (s *Scheduler) GetJob(name string) (JobView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[name]
	if !exists {
		return JobView{}, fmt.Errorf("job %s not found", name)
	}

	return s.viewOf(name, e), nil
}

// ListJobs 返回所有任务的运行时视图.
func (s *Scheduler) ListJobs() []JobView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]JobView, 0, len(s.entries))
	for name, e := range s.entries {
		views = append(views, s.viewOf(name, e))
	}

	return views
}

// Status 汇总调度器整体状态.
func (s *Scheduler) Status() (running bool, total, paused int, nextWake *time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total = len(s.entries)

	for _, e := range s.entries {
		if e.paused {
			paused++
			continue
		}

		// 暂停的任务不计入最近唤醒时间
		if next, err := e.job.NextRun(); err == nil && !next.IsZero() {
			if nextWake == nil || next.Before(*nextWake) {
				t := next
				nextWake = &t
			}
		}
	}

	return s.running, total, paused, nextWake
}

func (s *Scheduler) viewOf(name string, e *entry) JobView {
	v := JobView{
		Name:     name,
		CronExpr: e.cronExpr,
		Paused:   e.paused,
	}

	if last, err := e.job.LastRun(); err == nil && !last.IsZero() {
		t := last
		v.LastRun = &t
	}

	if next, err := e.job.NextRun(); err == nil && !next.IsZero() {
		t := next
		v.NextRun = &t
	}

	return v
}
