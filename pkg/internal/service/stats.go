package service

import (
	"context"
	"fmt"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// StatsService 存储统计.
type StatsService struct{ *VaultService }

// NewStatsService 构造统计服务.
func NewStatsService(c context.Context) *StatsService {
	return &StatsService{NewVaultService(c)}
}

// StorageStats 汇总磁盘容量与各状态下的文件数.
func (s *StatsService) StorageStats(ctx context.Context) (types.StorageStats, error) {
	usage, err := s.disk.Usage()
	if err != nil {
		return types.StorageStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var active, deleted, chunks int64
	if err := dbx.Model(&model.File{}).Where("is_deleted = ?", false).Count(&active).Error; err != nil {
		return types.StorageStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := dbx.Model(&model.File{}).Where("is_deleted = ?", true).Count(&deleted).Error; err != nil {
		return types.StorageStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := dbx.Model(&model.UploadChunk{}).Count(&chunks).Error; err != nil {
		return types.StorageStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return types.StorageStats{
		TotalBytes:     usage.TotalBytes,
		UsedBytes:      usage.UsedBytes,
		FreeBytes:      usage.FreeBytes,
		UsedRatio:      usage.UsedRatio,
		AlertThreshold: s.cfg.UsageAlertRatio,
		Alert:          usage.UsedRatio >= s.cfg.UsageAlertRatio,
		ActiveFiles:    active,
		DeletedFiles:   deleted,
		PendingChunks:  chunks,
	}, nil
}
