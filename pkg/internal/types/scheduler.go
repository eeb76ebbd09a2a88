package types

import "time"

// TaskInfo 调度任务视图.
type TaskInfo struct {
	TaskName   string     `json:"task_name"`
	Trigger    string     `json:"trigger"`
	Enabled    bool       `json:"enabled"`
	Paused     bool       `json:"paused"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	LastStatus string     `json:"last_status,omitempty"`
}

// SchedulerStatus 调度器整体状态.
type SchedulerStatus struct {
	Running     bool       `json:"running"`
	TasksTotal  int        `json:"tasks_total"`
	TasksPaused int        `json:"tasks_paused"`
	NextWakeUp  *time.Time `json:"next_wake_up,omitempty"`
}

// ExecutionInfo 单次任务运行记录视图.
type ExecutionInfo struct {
	ExecutionID string     `json:"execution_id"`
	TaskName    string     `json:"task_name"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Details     any        `json:"details,omitempty"`
	TriggeredBy string     `json:"triggered_by"`
}

// TriggerResponse 手动触发任务的受理结果.
type TriggerResponse struct {
	TaskName    string `json:"task_name"`
	ExecutionID string `json:"execution_id"`
	// Note 任务处于暂停态时的提示：本次仍会运行
	Note string `json:"note,omitempty"`
}
