package model

import (
	"time"
)

// 任务执行状态.
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// 任务触发方式.
const (
	TriggeredBySystem = "system"
	TriggeredByManual = "manual"
)

// ScheduledTask 调度任务登记，调度器初始化时按任务目录 upsert，每次运行后更新.
type ScheduledTask struct {
	ID       uint   `gorm:"primaryKey"                  json:"id"`
	TaskName string `gorm:"size:128;uniqueIndex"        json:"task_name"`
	// Trigger 人类可读的触发描述，如 "interval: 6h"、"cron: 0 2 * * *"
	Trigger    string     `gorm:"size:255"            json:"trigger"`
	Enabled    bool       `gorm:"default:true"        json:"enabled"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	LastStatus string     `gorm:"size:32"             json:"last_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名.
func (ScheduledTask) TableName() string {
	return "scheduled_tasks"
}

// TaskExecution 单次任务运行记录.
// ID 使用 ULID，按时间可排序.
type TaskExecution struct {
	ID          string     `gorm:"primaryKey;size:26" json:"execution_id"`
	TaskName    string     `gorm:"size:128;index"     json:"task_name"`
	StartedAt   time.Time  `gorm:"index"              json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `gorm:"size:32;index" json:"status"`
	Error       string     `gorm:"type:text"     json:"error,omitempty"`
	// DetailsJSON 任务返回的结构化结果，JSON 文本
	DetailsJSON string `gorm:"type:text" json:"details,omitempty"`
	TriggeredBy string `gorm:"size:16"   json:"triggered_by"`
}

// TableName 指定表名.
func (TaskExecution) TableName() string {
	return "task_executions"
}
