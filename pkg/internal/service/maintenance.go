package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/internal/model"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
)

// verifyConcurrency 完整性核对的并发读盘上限.
const verifyConcurrency = 4

// MaintenanceService 后台维护操作.定时任务与手动触发共用同一套实现.
type MaintenanceService struct{ *FileService }

// NewMaintenanceService 构造维护服务.
func NewMaintenanceService(c context.Context) *MaintenanceService {
	return &MaintenanceService{&FileService{NewVaultService(c)}}
}

// ChunkCleanupResult 过期分片回收结果.
type ChunkCleanupResult struct {
	ChunksRemoved  int `json:"chunks_removed"`
	UploadsRemoved int `json:"uploads_removed"`
	OrphanDirs     int `json:"orphan_dirs"`
}

// CleanupExpiredChunks 回收超过 TTL 的分片及其所属的暂存目录，
// 并清理磁盘上已无任何分片记录的孤儿目录.
func (s *MaintenanceService) CleanupExpiredChunks(ctx context.Context) (ChunkCleanupResult, error) {
	var result ChunkCleanupResult

	dbx := s.dbClient.GetDB().WithContext(ctx)
	now := time.Now().UTC()

	var expired []model.UploadChunk
	if err := dbx.Where("expires_at < ?", now).Find(&expired).Error; err != nil {
		return result, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	uploads := make(map[string]struct{})
	for _, c := range expired {
		uploads[c.UploadID] = struct{}{}
	}

	// 按会话回收：同一会话只要有分片过期就整体废弃
	for uploadID := range uploads {
		uploadLocks.Lock(uploadID)

		tx := dbx.Where("upload_id = ?", uploadID).Delete(&model.UploadChunk{})
		if tx.Error != nil {
			uploadLocks.Unlock(uploadID)
			return result, fmt.Errorf("%w: %v", ErrStorage, tx.Error)
		}

		if err := s.disk.RemoveUpload(uploadID); err != nil {
			uploadLocks.Unlock(uploadID)
			return result, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		uploadLocks.Unlock(uploadID)

		result.ChunksRemoved += int(tx.RowsAffected)
		result.UploadsRemoved++
	}

	// 磁盘上有目录但 DB 无记录：进程中断留下的孤儿.
	// 刚初始化、尚未收到分片的会话目录在 TTL 内豁免
	dirs, err := s.disk.ListUploadDirs()
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	for _, uploadID := range dirs {
		var count int64
		if err := dbx.Model(&model.UploadChunk{}).Where("upload_id = ?", uploadID).Count(&count).Error; err != nil {
			return result, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		if count > 0 {
			continue
		}

		if info, err := os.Stat(s.disk.UploadDir(uploadID)); err == nil && now.Sub(info.ModTime()) < s.cfg.ChunkTTL() {
			continue
		}

		if err := s.disk.RemoveUpload(uploadID); err != nil {
			return result, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		result.OrphanDirs++
	}

	if result.ChunksRemoved > 0 || result.OrphanDirs > 0 {
		nlog.Logger().Info().
			Int("chunks", result.ChunksRemoved).
			Int("uploads", result.UploadsRemoved).
			Int("orphan_dirs", result.OrphanDirs).
			Msg("expired chunks cleaned")
	}

	return result, nil
}

// RetentionResult 回收站保留期清理结果.
type RetentionResult struct {
	FilesPurged   int   `json:"files_purged"`
	BytesReleased int64 `json:"bytes_released"`
}

// CleanupDeletedFiles 物理清除在回收站滞留超过保留期的文件.
// 删除时刻距今不足保留期的一律不动.
func (s *MaintenanceService) CleanupDeletedFiles(ctx context.Context) (RetentionResult, error) {
	var result RetentionResult

	cutoff := time.Now().UTC().Add(-s.cfg.Retention())

	var rows []model.File

	err := s.dbClient.GetDB().WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Find(&rows).Error
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	for i := range rows {
		f := &rows[i]

		fileLocks.Lock(f.ID)
		err := s.purgeLocked(ctx, f, "retention")
		fileLocks.Unlock(f.ID)

		if err != nil {
			// 单个失败不阻断整批，下轮重试
			nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("retention purge failed")
			continue
		}

		result.FilesPurged++
		result.BytesReleased += f.Size
	}

	return result, nil
}

// StorageCheckResult 磁盘巡检结果.
type StorageCheckResult struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	UsedRatio  float64 `json:"used_ratio"`
	Alert      bool    `json:"alert"`
}

// CheckStorage 巡检磁盘使用率并刷新指标，越过阈值时发布告警事件.
func (s *MaintenanceService) CheckStorage(ctx context.Context) (StorageCheckResult, error) {
	usage, err := s.disk.Usage()
	if err != nil {
		return StorageCheckResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.StorageUsedRatio.Set(usage.UsedRatio)

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var active, deleted int64
	if err := dbx.Model(&model.File{}).Where("is_deleted = ?", false).Count(&active).Error; err != nil {
		return StorageCheckResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := dbx.Model(&model.File{}).Where("is_deleted = ?", true).Count(&deleted).Error; err != nil {
		return StorageCheckResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.FilesByState.WithLabelValues("active").Set(float64(active))
	metrics.FilesByState.WithLabelValues("deleted").Set(float64(deleted))

	result := StorageCheckResult{
		TotalBytes: usage.TotalBytes,
		UsedBytes:  usage.UsedBytes,
		UsedRatio:  usage.UsedRatio,
		Alert:      usage.UsedRatio >= s.cfg.UsageAlertRatio,
	}

	if result.Alert {
		nlog.Logger().Warn().
			Float64("used_ratio", usage.UsedRatio).
			Float64("threshold", s.cfg.UsageAlertRatio).
			Msg("storage usage above alert threshold")

		s.publishStorageAlert(usage.TotalBytes, usage.UsedBytes, usage.UsedRatio, s.cfg.UsageAlertRatio)
	}

	return result, nil
}

// VerifyResult 文件完整性抽查结果.
type VerifyResult struct {
	FilesChecked int      `json:"files_checked"`
	Corrupted    []string `json:"corrupted,omitempty"`
	MissingDisk  []string `json:"missing_disk,omitempty"`
}

// VerifyFiles 对在用文件做校验和核对，limit 控制单轮抽查数量（0 表示不限）.
// 只报告不修复：损坏或丢失的文件留给人工处置.
func (s *MaintenanceService) VerifyFiles(ctx context.Context, limit int) (VerifyResult, error) {
	var result VerifyResult

	q := s.dbClient.GetDB().WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []model.File
	if err := q.Find(&rows).Error; err != nil {
		return result, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result.FilesChecked = len(rows)

	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)

	for i := range rows {
		f := &rows[i]

		g.Go(func() error {
			if !s.disk.Exists(f.FilePath) {
				mu.Lock()
				result.MissingDisk = append(result.MissingDisk, f.ID)
				mu.Unlock()

				return nil
			}

			sum, err := s.disk.SumFile(f.FilePath)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}

			if f.Checksum != "" && sum != f.Checksum {
				mu.Lock()
				result.Corrupted = append(result.Corrupted, f.ID)
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	if len(result.Corrupted) > 0 || len(result.MissingDisk) > 0 {
		nlog.Logger().Warn().
			Strs("corrupted", result.Corrupted).
			Strs("missing", result.MissingDisk).
			Msg("integrity check found problems")
	}

	return result, nil
}
