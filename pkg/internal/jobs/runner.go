// Package jobs 定义内置维护任务目录，并负责任务注册、运行记录与历史裁剪.
package jobs

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// ULID 熵源，单调递增保证同一毫秒内生成的 id 仍可排序.
var (
	ulidEntropy   = ulid.Monotonic(crand.Reader, 0)
	ulidEntropyMu sync.Mutex
)

func newExecutionID(t time.Time) string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String()
}

// handler 执行一个任务，返回结构化结果（写入执行记录的 details）.
type handler func(ctx context.Context) (any, error)

// Runner 把任务目录接到调度器上，并为每次运行落一条 task_executions 记录.
type Runner struct {
	sched    *scheduler.Scheduler
	mgr      *storage.Manager
	cfg      *configs.SchedulerConfig
	baseCtx  context.Context
	handlers map[string]handler
}

// NewRunner 构造任务运行器并注册全部内置任务.
func NewRunner(sched *scheduler.Scheduler, mgr *storage.Manager) (*Runner, error) {
	if sched == nil {
		return nil, fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return nil, fmt.Errorf("storage manager is nil")
	}

	r := &Runner{
		sched:   sched,
		mgr:     mgr,
		cfg:     &configs.GetConfig().Scheduler,
		baseCtx: ctxPkg.WithStorageManager(context.Background(), mgr),
	}

	r.handlers = map[string]handler{
		JobSessionCleanup:      r.runSessionCleanup,
		JobChunksCleanup:       r.runChunksCleanup,
		JobDeletedFilesCleanup: r.runDeletedFilesCleanup,
		JobStorageCheck:        r.runStorageCheck,
		JobSyncOutbound:        r.runSyncOutbound,
		JobSyncInbound:         r.runSyncInbound,
		JobDatabaseBackup:      r.runDatabaseBackup,
		JobAuditLogArchival:    r.runAuditLogArchival,
		JobIntegrityCheck:      r.runIntegrityCheck,
	}

	if err := r.register(); err != nil {
		return nil, err
	}

	return r, nil
}

// register 把任务目录登记到 scheduled_tasks 表并挂到调度器.
func (r *Runner) register() error {
	dbx := r.mgr.GetDBClient().GetDB()

	for _, e := range catalogue {
		var existing model.ScheduledTask

		err := dbx.Where("task_name = ?", e.Name).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			task := model.ScheduledTask{
				TaskName: e.Name,
				Trigger:  "cron: " + e.CronExpr,
				Enabled:  true,
			}
			if err := dbx.Create(&task).Error; err != nil {
				return fmt.Errorf("register task %s: %w", e.Name, err)
			}
		case err != nil:
			return fmt.Errorf("load task %s: %w", e.Name, err)
		default:
			// cron 表达式变更时刷新登记
			if existing.Trigger != "cron: "+e.CronExpr {
				existing.Trigger = "cron: " + e.CronExpr
				if err := dbx.Save(&existing).Error; err != nil {
					return fmt.Errorf("update task %s: %w", e.Name, err)
				}
			}
		}

		name := e.Name
		if err := r.sched.AddCron(name, e.CronExpr, func(ctx context.Context, triggeredBy string) {
			r.execute(name, newExecutionID(time.Now()), triggeredBy)
		}); err != nil {
			return err
		}
	}

	return nil
}

// execute 运行一个任务并记录执行历史.带硬超时和 panic 保护.
func (r *Runner) execute(name, execID, triggeredBy string) {
	h, exists := r.handlers[name]
	if !exists {
		nlog.Logger().Error().Str("job", name).Msg("no handler for job")
		return
	}

	start := time.Now().UTC()
	dbx := r.mgr.GetDBClient().GetDB()

	exec := model.TaskExecution{
		ID:          execID,
		TaskName:    name,
		StartedAt:   start,
		Status:      model.TaskStatusRunning,
		TriggeredBy: triggeredBy,
	}

	if err := dbx.Create(&exec).Error; err != nil {
		nlog.Logger().Error().Err(err).Str("job", name).Msg("record execution start failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.baseCtx, r.cfg.JobTimeout())
	defer cancel()

	details, runErr := r.runProtected(ctx, name, h)

	completed := time.Now().UTC()
	exec.CompletedAt = &completed

	if runErr != nil {
		exec.Status = model.TaskStatusFailed
		exec.Error = runErr.Error()

		nlog.Logger().Error().Err(runErr).Str("job", name).Str("execution", execID).Msg("job failed")
	} else {
		exec.Status = model.TaskStatusCompleted

		nlog.Logger().Info().
			Str("job", name).
			Str("execution", execID).
			Dur("took", completed.Sub(start)).
			Msg("job completed")
	}

	if details != nil {
		if s, err := sonic.MarshalString(details); err == nil {
			exec.DetailsJSON = s
		}
	}

	if err := dbx.Save(&exec).Error; err != nil {
		nlog.Logger().Error().Err(err).Str("job", name).Msg("record execution result failed")
	}

	r.updateTaskState(name, start, exec.Status)
	r.trimHistory(name)

	metrics.JobRunsTotal.WithLabelValues(name, exec.Status).Inc()
	metrics.JobDuration.WithLabelValues(name).Observe(completed.Sub(start).Seconds())
}

// runProtected 捕获 handler panic，转成失败记录.
func (r *Runner) runProtected(ctx context.Context, name string, h handler) (details any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)

			nlog.Logger().Error().Str("job", name).Interface("panic", rec).Msg("job panicked")
		}
	}()

	return h(ctx)
}

// updateTaskState 刷新 scheduled_tasks 上的最近运行信息.
func (r *Runner) updateTaskState(name string, lastRun time.Time, status string) {
	updates := map[string]any{
		"last_run":    lastRun,
		"last_status": status,
	}

	if view, err := r.sched.GetJob(name); err == nil && view.NextRun != nil {
		updates["next_run"] = *view.NextRun
	}

	err := r.mgr.GetDBClient().GetDB().
		Model(&model.ScheduledTask{}).
		Where("task_name = ?", name).
		Updates(updates).Error
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("job", name).Msg("update task state failed")
	}
}

// trimHistory 按配置裁剪任务的执行历史，保留最近 N 条.
func (r *Runner) trimHistory(name string) {
	keep := r.cfg.HistoryKeepPerTask
	if keep <= 0 {
		keep = configs.DefaultHistoryKeepPerTask
	}

	dbx := r.mgr.GetDBClient().GetDB()

	// ULID 按时间有序，直接按 id 倒序定位保留边界
	var ids []string
	if err := dbx.Model(&model.TaskExecution{}).
		Where("task_name = ?", name).
		Order("id DESC").
		Offset(keep).
		Limit(1).
		Pluck("id", &ids).Error; err != nil || len(ids) == 0 {
		return
	}

	if err := dbx.Where("task_name = ? AND id <= ?", name, ids[0]).
		Delete(&model.TaskExecution{}).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("job", name).Msg("trim execution history failed")
	}
}

// Trigger 手动触发任务，立即返回执行 id，任务异步运行.
// 暂停中的任务也会运行，响应里附带提示.
func (r *Runner) Trigger(name string) (types.TriggerResponse, error) {
	if _, exists := r.handlers[name]; !exists {
		return types.TriggerResponse{}, fmt.Errorf("task %s not found", name)
	}

	execID := newExecutionID(time.Now())

	resp := types.TriggerResponse{
		TaskName:    name,
		ExecutionID: execID,
	}

	if r.sched.IsPaused(name) {
		resp.Note = "task is paused; manual trigger runs anyway"
	}

	go r.execute(name, execID, model.TriggeredByManual)

	return resp, nil
}

// Tasks 返回全部任务的视图（调度状态 + 登记信息）.
func (r *Runner) Tasks() ([]types.TaskInfo, error) {
	var rows []model.ScheduledTask
	if err := r.mgr.GetDBClient().GetDB().Order("task_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]types.TaskInfo, 0, len(rows))

	for _, row := range rows {
		info := types.TaskInfo{
			TaskName:   row.TaskName,
			Trigger:    row.Trigger,
			Enabled:    row.Enabled,
			Paused:     r.sched.IsPaused(row.TaskName),
			LastRun:    row.LastRun,
			NextRun:    row.NextRun,
			LastStatus: row.LastStatus,
		}

		if view, err := r.sched.GetJob(row.TaskName); err == nil {
			if view.NextRun != nil {
				info.NextRun = view.NextRun
			}

			if view.LastRun != nil {
				info.LastRun = view.LastRun
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// Task 返回单个任务的视图.
func (r *Runner) Task(name string) (types.TaskInfo, error) {
	tasks, err := r.Tasks()
	if err != nil {
		return types.TaskInfo{}, err
	}

	for _, t := range tasks {
		if t.TaskName == name {
			return t, nil
		}
	}

	return types.TaskInfo{}, fmt.Errorf("task %s not found", name)
}

// Executions 返回任务最近的执行历史，新的在前.
// limit 上限取配置的历史保留条数，再多也查不出更多行.
func (r *Runner) Executions(name string, limit int) ([]types.ExecutionInfo, error) {
	keep := r.cfg.HistoryKeepPerTask
	if keep <= 0 {
		keep = configs.DefaultHistoryKeepPerTask
	}

	if limit <= 0 {
		limit = 20
	}

	if limit > keep {
		limit = keep
	}

	var rows []model.TaskExecution

	err := r.mgr.GetDBClient().GetDB().
		Where("task_name = ?", name).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	infos := make([]types.ExecutionInfo, 0, len(rows))

	for _, row := range rows {
		info := types.ExecutionInfo{
			ExecutionID: row.ID,
			TaskName:    row.TaskName,
			StartedAt:   row.StartedAt,
			CompletedAt: row.CompletedAt,
			Status:      row.Status,
			Error:       row.Error,
			TriggeredBy: row.TriggeredBy,
		}

		if row.DetailsJSON != "" {
			var details any
			if err := sonic.UnmarshalString(row.DetailsJSON, &details); err == nil {
				info.Details = details
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// Pause 暂停任务的到点触发.
func (r *Runner) Pause(name string) error {
	return r.sched.Pause(name)
}

// Resume 恢复任务的到点触发.
func (r *Runner) Resume(name string) error {
	return r.sched.Resume(name)
}

// Status 返回调度器整体状态.
func (r *Runner) Status() types.SchedulerStatus {
	running, total, paused, nextWake := r.sched.Status()

	return types.SchedulerStatus{
		Running:     running,
		TasksTotal:  total,
		TasksPaused: paused,
		NextWakeUp:  nextWake,
	}
}
