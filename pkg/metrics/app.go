package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 领域指标：上传、存储容量与维护任务.
var (
	// UploadBytesTotal 各上传会话累计接收的字节数.
	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filevault_upload_bytes_total",
			Help: "Total bytes received across upload sessions",
		},
	)

	// UploadsCompleted 按结果统计的上传完成次数.
	UploadsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_uploads_completed_total",
			Help: "Completed upload attempts by result",
		},
		[]string{"result"}, // ok / checksum_mismatch / chunk_mismatch
	)

	// StorageUsedRatio 存储根所在文件系统的使用率.
	StorageUsedRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filevault_storage_used_ratio",
			Help: "Used ratio of the filesystem backing the storage root",
		},
	)

	// FilesByState 当前各状态的文件数.
	FilesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filevault_files",
			Help: "Number of files by lifecycle state",
		},
		[]string{"state"}, // active / deleted
	)

	// JobRunsTotal 维护任务运行次数.
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_job_runs_total",
			Help: "Maintenance job runs by task and status",
		},
		[]string{"task", "status"},
	)

	// JobDuration 维护任务运行耗时.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filevault_job_duration_seconds",
			Help:    "Maintenance job run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"task"},
	)
)

// registerAppMetrics 注册领域指标，由 InitMetrics 调用.
func registerAppMetrics() {
	registry.MustRegister(
		UploadBytesTotal,
		UploadsCompleted,
		StorageUsedRatio,
		FilesByState,
		JobRunsTotal,
		JobDuration,
	)
}
