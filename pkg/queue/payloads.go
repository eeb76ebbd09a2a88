package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一个库内文件及其关键元数据.
type FileRef struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"` // 相对存储根的路径
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// FileStoredPayload 分片合并校验通过，文件写入 active 树.
type FileStoredPayload struct {
	File     FileRef `json:"file"`
	UploadID string  `json:"upload_id,omitempty"`
	Actor    string  `json:"actor,omitempty"`
}

// FileDeletedPayload 文件被软删除.
type FileDeletedPayload struct {
	File  FileRef `json:"file"`
	Actor string  `json:"actor,omitempty"`
}

// FileRestoredPayload 文件从回收站恢复.
type FileRestoredPayload struct {
	File  FileRef `json:"file"`
	Actor string  `json:"actor,omitempty"`
}

// FilePurgedPayload 文件被物理清除.
type FilePurgedPayload struct {
	File FileRef `json:"file"`
	// Reason 清除原因：retention（保留期满）或 manual（人工清理）
	Reason string `json:"reason,omitempty"`
}

// FileRenamedPayload 文件逻辑名变更.
type FileRenamedPayload struct {
	File    FileRef `json:"file"`
	OldName string  `json:"old_name"`
	Actor   string  `json:"actor,omitempty"`
}

// UploadCancelledPayload 上传会话被取消.
type UploadCancelledPayload struct {
	UploadID string `json:"upload_id"`
	// ChunksRemoved 被回收的分片数
	ChunksRemoved int    `json:"chunks_removed,omitempty"`
	Actor         string `json:"actor,omitempty"`
}

// StorageAlertPayload 磁盘使用率越过告警阈值.
type StorageAlertPayload struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	UsedRatio  float64 `json:"used_ratio"`
	Threshold  float64 `json:"threshold"`
}
