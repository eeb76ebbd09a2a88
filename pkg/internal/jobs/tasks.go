package jobs

import (
	"context"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// runSessionCleanup 上传会话本身无状态，会话占用的资源就是分片，
// 这里只做轻量巡检：报告当前在途的分片数，回收交给 chunks_cleanup.
func (r *Runner) runSessionCleanup(ctx context.Context) (any, error) {
	var pending int64

	err := r.mgr.GetDBClient().GetDB().WithContext(ctx).
		Model(&model.UploadChunk{}).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}

	return map[string]any{"pending_chunks": pending}, nil
}

// runChunksCleanup 回收过期分片与孤儿暂存目录.
func (r *Runner) runChunksCleanup(ctx context.Context) (any, error) {
	svc := service.NewMaintenanceService(ctx)

	result, err := svc.CleanupExpiredChunks(ctx)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// runDeletedFilesCleanup 物理清除回收站中超过保留期的文件.
func (r *Runner) runDeletedFilesCleanup(ctx context.Context) (any, error) {
	svc := service.NewMaintenanceService(ctx)

	result, err := svc.CleanupDeletedFiles(ctx)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// runStorageCheck 巡检磁盘使用率，越过阈值时告警.
func (r *Runner) runStorageCheck(ctx context.Context) (any, error) {
	svc := service.NewMaintenanceService(ctx)

	result, err := svc.CheckStorage(ctx)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// runSyncOutbound 把待同步文件推到远端.远端同步默认关闭，
// 开启后这里负责把 sync_status=pending 的文件推送出去.
// TODO(sync): 接入 rclone 远端（cfg.SyncRemote）后实现实际推送.
func (r *Runner) runSyncOutbound(ctx context.Context) (any, error) {
	if !r.cfg.SyncEnabled {
		return map[string]any{"skipped": "sync disabled"}, nil
	}

	var pending int64

	err := r.mgr.GetDBClient().GetDB().WithContext(ctx).
		Model(&model.File{}).
		Where("sync_status = ?", model.SyncPending).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}

	nlog.Logger().Info().Int64("pending", pending).Str("remote", r.cfg.SyncRemote).Msg("outbound sync pass")

	return map[string]any{"pending": pending, "pushed": 0}, nil
}

// runSyncInbound 从远端拉取新文件.见 runSyncOutbound 的说明.
func (r *Runner) runSyncInbound(ctx context.Context) (any, error) {
	if !r.cfg.SyncEnabled {
		return map[string]any{"skipped": "sync disabled"}, nil
	}

	return map[string]any{"pulled": 0}, nil
}

// runDatabaseBackup 数据库备份占位：记录备份目标，备份策略由部署侧决定
// （sqlite 用文件快照，postgres/mysql 走各自的 dump 工具）.
func (r *Runner) runDatabaseBackup(ctx context.Context) (any, error) {
	backupDir := r.mgr.GetDisk().Root()

	return map[string]any{"backup_dir": backupDir + "/backup", "performed": false}, nil
}

// runAuditLogArchival 审计事件归档占位：事件走 MQ 外发，
// 本地没有要归档的审计表，保留任务位以兼容运维面板.
func (r *Runner) runAuditLogArchival(ctx context.Context) (any, error) {
	return map[string]any{"archived": 0}, nil
}

// runIntegrityCheck 核对在用文件的磁盘字节与登记的大小/校验和.
// 只报告不修复，损坏清单进执行记录的 details.
func (r *Runner) runIntegrityCheck(ctx context.Context) (any, error) {
	svc := service.NewMaintenanceService(ctx)

	result, err := svc.VerifyFiles(ctx, 0)
	if err != nil {
		return nil, err
	}

	return result, nil
}
