package types

// StorageStats 存储容量与文件状态统计.
type StorageStats struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	UsedRatio  float64 `json:"used_ratio"`
	// AlertThreshold 告警阈值；UsedRatio 超过后 Alert 为 true
	AlertThreshold float64 `json:"alert_threshold"`
	Alert          bool    `json:"alert"`

	ActiveFiles   int64 `json:"active_files"`
	DeletedFiles  int64 `json:"deleted_files"`
	PendingChunks int64 `json:"pending_chunks"`
}
