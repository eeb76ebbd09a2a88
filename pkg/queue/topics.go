// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：fv.<域>.<动作>，尽量稳定且向后兼容.
// 域：file(文件生命周期)、upload(上传会话)、storage(存储容量)
// 动作：stored/deleted/restored/purged/renamed/alert

const (
	// 文件生命周期领域.
	TopicFileStored   = "fv.file.stored"   // 分片合并校验通过，文件进入 active 树
	TopicFileDeleted  = "fv.file.deleted"  // 文件被软删除，移入 deleted 树
	TopicFileRestored = "fv.file.restored" // 文件从回收站恢复
	TopicFilePurged   = "fv.file.purged"   // 文件被物理清除（保留期满或人工清理）
	TopicFileRenamed  = "fv.file.renamed"  // 文件逻辑名变更（磁盘文件名不变）

	// 上传会话领域.
	TopicUploadCancelled = "fv.upload.cancelled" // 上传会话被取消，分片已回收

	// 存储容量领域.
	TopicStorageAlert = "fv.storage.alert" // 磁盘使用率越过告警阈值
)

// FileTopics 文件生命周期相关主题集合，用于批量订阅.
var FileTopics = []string{
	TopicFileStored, TopicFileDeleted, TopicFileRestored,
	TopicFilePurged, TopicFileRenamed,
}
