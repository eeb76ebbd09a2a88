package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSchedulerEnabled   = true
	DefaultJobTimeoutMinutes  = 10 // 单次任务运行的硬超时
	DefaultSyncEnabled        = false
	DefaultSyncRemote         = "windows-remote:"
	DefaultHistoryKeepPerTask = 100 // 每个任务保留的执行历史条数
)

// SchedulerConfig 维护任务调度配置.
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	JobTimeoutMinutes  int    `mapstructure:"job_timeout_minutes"   rule:"min=1,max=1440"`
	SyncEnabled        bool   `mapstructure:"sync_enabled"`
	SyncRemote         string `mapstructure:"sync_remote"`
	HistoryKeepPerTask int    `mapstructure:"history_keep_per_task" rule:"min=1"`
}

// JobTimeout 返回单次任务运行的超时时间.
func (c *SchedulerConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMinutes) * time.Minute
}

// setDefaults 设置调度器配置的默认值.
func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", DefaultSchedulerEnabled)
	v.SetDefault("scheduler.job_timeout_minutes", DefaultJobTimeoutMinutes)
	v.SetDefault("scheduler.sync_enabled", DefaultSyncEnabled)
	v.SetDefault("scheduler.sync_remote", DefaultSyncRemote)
	v.SetDefault("scheduler.history_keep_per_task", DefaultHistoryKeepPerTask)
}
