// Package model 定义 gorm 数据模型：文件元数据、上传分片与调度任务.
package model

import (
	"time"
)

// 文件同步状态.
const (
	SyncPending  = "pending"
	SyncSynced   = "synced"
	SyncConflict = "conflict"
	SyncError    = "error"
)

// File 文件元数据模型，磁盘真身位于 active/ 或 deleted/ 树下.
// ID 即磁盘文件名（去扩展名部分），由 uuid 生成.
type File struct {
	ID       string `gorm:"primaryKey;size:36"        json:"file_id"`
	Filename string `gorm:"size:255;index;not null"   json:"filename"`
	// FilePath 相对于存储根的路径，如 active/2026/08/<id>.pdf
	FilePath string `gorm:"size:1024;not null" json:"file_path"`
	Size     int64  `gorm:"index;not null"     json:"size"`
	// Checksum SHA-256 十六进制摘要，64 位小写
	Checksum   string    `gorm:"size:64;index"  json:"checksum"`
	MimeType   string    `gorm:"size:255"       json:"mime_type"`
	UploadedBy string    `gorm:"size:255;index" json:"uploaded_by"`
	UploadDate time.Time `gorm:"index"          json:"upload_date"`

	// 软删除状态；保留期满由维护任务物理清除
	IsDeleted bool       `gorm:"index;default:false" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"index"               json:"deleted_at,omitempty"`
	DeletedBy string     `gorm:"size:255"            json:"deleted_by,omitempty"`

	SyncStatus string `gorm:"size:32;index;default:pending" json:"sync_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名.
func (File) TableName() string {
	return "files"
}
