package jobs

// 任务名称常量，与 scheduled_tasks 表和管理 API 中的 task_name 一致.
const (
	JobSessionCleanup      = "session_cleanup"
	JobChunksCleanup       = "chunks_cleanup"
	JobDeletedFilesCleanup = "deleted_files_cleanup"
	JobStorageCheck        = "storage_check"
	JobSyncOutbound        = "sync_outbound"
	JobSyncInbound         = "sync_inbound"
	JobDatabaseBackup      = "database_backup"
	JobAuditLogArchival    = "audit_log_archival"
	JobIntegrityCheck      = "integrity_check"
)

// Cron 表达式集中管理.清理类任务错峰执行，避免同时扫库.
const (
	CronSessionCleanup      = "0 * * * *"    // 每小时整点
	CronChunksCleanup       = "0 */6 * * *"  // 每 6 小时
	CronDeletedFilesCleanup = "0 2 * * *"    // 每天 02:00
	CronStorageCheck        = "30 */6 * * *" // 每 6 小时，与分片清理错峰
	CronSyncOutbound        = "*/30 * * * *" // 每 30 分钟
	CronSyncInbound         = "45 * * * *"   // 每小时第 45 分
	CronDatabaseBackup      = "0 1 * * *"    // 每天 01:00
	CronAuditLogArchival    = "0 3 * * 0"    // 每周日 03:00
	CronIntegrityCheck      = "0 4 * * 0"    // 每周日 04:00，避开归档
)

// catalogueEntry 描述一个内置任务.
type catalogueEntry struct {
	Name     string
	CronExpr string
}

// catalogue 是全部内置任务的注册顺序表.
var catalogue = []catalogueEntry{
	{JobSessionCleanup, CronSessionCleanup},
	{JobChunksCleanup, CronChunksCleanup},
	{JobDeletedFilesCleanup, CronDeletedFilesCleanup},
	{JobStorageCheck, CronStorageCheck},
	{JobSyncOutbound, CronSyncOutbound},
	{JobSyncInbound, CronSyncInbound},
	{JobDatabaseBackup, CronDatabaseBackup},
	{JobAuditLogArchival, CronAuditLogArchival},
	{JobIntegrityCheck, CronIntegrityCheck},
}
