package model

import (
	"time"
)

// UploadChunk 已落盘的上传分片记录.
// 同一 upload_id 下 chunk_number 唯一；分片文件位于 temp/<upload_id>/chunk_<n>.
type UploadChunk struct {
	ID       uint   `gorm:"primaryKey"                                  json:"id"`
	UploadID string `gorm:"size:36;index:idx_upload_chunk,unique;index" json:"upload_id"`
	// ChunkNumber 从 0 开始
	ChunkNumber int `gorm:"index:idx_upload_chunk,unique" json:"chunk_number"`
	// TotalChunks 客户端声明的总分片数，完成时用首个分片的声明做一致性检查
	TotalChunks int    `json:"total_chunks"`
	Size        int64  `json:"size"`
	Checksum    string `gorm:"size:64"   json:"checksum"`
	FilePath    string `gorm:"size:1024" json:"file_path"`

	UploadedAt time.Time `json:"uploaded_at"`
	// ExpiresAt 落盘时间 + TTL，过期后由维护任务回收
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// TableName 指定表名.
func (UploadChunk) TableName() string {
	return "upload_chunks"
}

// Expired 判断分片在 now 时刻是否已过期.
func (c *UploadChunk) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
