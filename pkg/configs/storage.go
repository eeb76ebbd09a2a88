package configs

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultStorageRoot = "/data" // 存储根目录

	DefaultChunkSizeBytes  = 50 * 1024 * 1024        // 分片大小，固定常量，与客户端约定
	DefaultMaxUploadBytes  = 10 * 1024 * 1024 * 1024 // 单文件最大 10 GiB
	DefaultChunkTTLHours   = 24                      // 分片写入后的存活时间
	DefaultRetentionDays   = 90                      // 软删除文件保留天数
	DefaultUsageAlertRatio = 0.80                    // 磁盘使用率告警阈值
)

// StorageConfig 本地文件存储配置.
// 三级目录结构: temp（分片暂存）、active（在用文件）、deleted（回收站），
// active/deleted 按 yyyy/mm 分区.
type StorageConfig struct {
	Root    string `mapstructure:"root"    rule:"required"`
	Active  string `mapstructure:"active"`  // 为空时取 <root>/active
	Deleted string `mapstructure:"deleted"` // 为空时取 <root>/deleted
	Temp    string `mapstructure:"temp"`    // 为空时取 <root>/temp
	Backup  string `mapstructure:"backup"`  // 为空时取 <root>/backups

	ChunkSizeBytes  int64   `mapstructure:"chunk_size_bytes"  rule:"min=1024"`
	MaxUploadBytes  int64   `mapstructure:"max_upload_bytes"  rule:"min=1"`
	ChunkTTLHours   int     `mapstructure:"chunk_ttl_hours"   rule:"min=1"`
	RetentionDays   int     `mapstructure:"retention_days"    rule:"min=1"`
	UsageAlertRatio float64 `mapstructure:"usage_alert_ratio" rule:"gt=0,lte=1"`
}

// ActivePath 返回在用文件树根目录.
func (c *StorageConfig) ActivePath() string {
	if c.Active != "" {
		return c.Active
	}

	return filepath.Join(c.Root, "active")
}

// DeletedPath 返回回收站文件树根目录.
func (c *StorageConfig) DeletedPath() string {
	if c.Deleted != "" {
		return c.Deleted
	}

	return filepath.Join(c.Root, "deleted")
}

// TempPath 返回分片暂存树根目录.
func (c *StorageConfig) TempPath() string {
	if c.Temp != "" {
		return c.Temp
	}

	return filepath.Join(c.Root, "temp")
}

// BackupPath 返回备份目录.
func (c *StorageConfig) BackupPath() string {
	if c.Backup != "" {
		return c.Backup
	}

	return filepath.Join(c.Root, "backups")
}

// ChunkTTL 返回分片存活时长.
func (c *StorageConfig) ChunkTTL() time.Duration {
	return time.Duration(c.ChunkTTLHours) * time.Hour
}

// Retention 返回软删除保留时长.
func (c *StorageConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// setDefaults 设置存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.root", DefaultStorageRoot)
	v.SetDefault("storage.active", "")
	v.SetDefault("storage.deleted", "")
	v.SetDefault("storage.temp", "")
	v.SetDefault("storage.backup", "")
	v.SetDefault("storage.chunk_size_bytes", DefaultChunkSizeBytes)
	v.SetDefault("storage.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("storage.chunk_ttl_hours", DefaultChunkTTLHours)
	v.SetDefault("storage.retention_days", DefaultRetentionDays)
	v.SetDefault("storage.usage_alert_ratio", DefaultUsageAlertRatio)
}
