// Package types 定义 HTTP 层的请求/响应结构体.
// 校验规则通过 binding（gin）与 rule（pkg/rule）标签声明.
package types

import "time"

// InitUploadRequest 初始化上传会话.
type InitUploadRequest struct {
	Filename    string `json:"filename"      binding:"required" rule:"filename"`
	Size        int64  `json:"size"          binding:"required" rule:"gt=0"`
	TotalChunks int    `json:"total_chunks"  binding:"required" rule:"gt=0"`
	MimeType    string `json:"mime_type,omitempty"`
}

// InitUploadResponse 上传会话信息.
type InitUploadResponse struct {
	UploadID string `json:"upload_id"`
	// ChunkSize 服务端约定的分片大小（字节），客户端按此切分
	ChunkSize   int64 `json:"chunk_size"`
	TotalChunks int   `json:"total_chunks"`
	// ExpiresAt 分片的存活截止时间基准
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadChunkResponse 单个分片落盘结果.
type UploadChunkResponse struct {
	UploadID    string    `json:"upload_id"`
	ChunkNumber int       `json:"chunk_number"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CompleteUploadRequest 完成上传，合并分片.
type CompleteUploadRequest struct {
	Filename string `json:"filename"  binding:"required" rule:"filename"`
	// Checksum 整文件 SHA-256，必填；与合并结果不符时返回 422 且分片保留
	Checksum string `json:"checksum"  binding:"required" rule:"sha256hex"`
	MimeType string `json:"mime_type,omitempty"`
}

// CancelUploadResponse 取消上传会话结果.
type CancelUploadResponse struct {
	UploadID      string `json:"upload_id"`
	ChunksRemoved int    `json:"chunks_removed"`
}
