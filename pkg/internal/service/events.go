package service

import (
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

// 事件发布是尽力而为的：MQ 未启用或发布失败只记日志，不影响主流程.

func (s *VaultService) eventsEnabled() *configs.FileEventsConfig {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled || s.mqClient == nil {
		return nil
	}

	return &cfg.File
}

func fileRefFromModel(f *model.File) queue.FileRef {
	return queue.FileRef{
		FileID:   f.ID,
		Filename: f.Filename,
		Path:     f.FilePath,
		Size:     f.Size,
		Checksum: f.Checksum,
		MimeType: f.MimeType,
	}
}

func (s *VaultService) publishFileStored(f model.File, uploadID, actor string) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.Stored {
		return
	}

	err := queue.PublishFileStored(s.mqClient.Publisher(), queue.FileStoredPayload{
		File:     fileRefFromModel(&f),
		UploadID: uploadID,
		Actor:    actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("publish file.stored failed")
	}
}

func (s *VaultService) publishFileDeleted(f model.File, actor string) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.Deleted {
		return
	}

	err := queue.PublishFileDeleted(s.mqClient.Publisher(), queue.FileDeletedPayload{
		File:  fileRefFromModel(&f),
		Actor: actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("publish file.deleted failed")
	}
}

func (s *VaultService) publishFileRestored(f model.File, actor string) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.Restored {
		return
	}

	err := queue.PublishFileRestored(s.mqClient.Publisher(), queue.FileRestoredPayload{
		File:  fileRefFromModel(&f),
		Actor: actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("publish file.restored failed")
	}
}

func (s *VaultService) publishFilePurged(f model.File, reason string) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.Purged {
		return
	}

	err := queue.PublishFilePurged(s.mqClient.Publisher(), queue.FilePurgedPayload{
		File:   fileRefFromModel(&f),
		Reason: reason,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("publish file.purged failed")
	}
}

func (s *VaultService) publishFileRenamed(f model.File, oldName, actor string) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.Renamed {
		return
	}

	err := queue.PublishFileRenamed(s.mqClient.Publisher(), queue.FileRenamedPayload{
		File:    fileRefFromModel(&f),
		OldName: oldName,
		Actor:   actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("file_id", f.ID).Msg("publish file.renamed failed")
	}
}

func (s *VaultService) publishUploadCancelled(uploadID string, removed int, actor string) {
	ev := s.eventsEnabled()
	if ev == nil {
		return
	}

	err := queue.PublishUploadCancelled(s.mqClient.Publisher(), queue.UploadCancelledPayload{
		UploadID:      uploadID,
		ChunksRemoved: removed,
		Actor:         actor,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("upload_id", uploadID).Msg("publish upload.cancelled failed")
	}
}

func (s *VaultService) publishStorageAlert(total, used uint64, ratio, threshold float64) {
	ev := s.eventsEnabled()
	if ev == nil || !ev.StorageAlert {
		return
	}

	err := queue.PublishStorageAlert(s.mqClient.Publisher(), queue.StorageAlertPayload{
		TotalBytes: total,
		UsedBytes:  used,
		UsedRatio:  ratio,
		Threshold:  threshold,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish storage.alert failed")
	}
}
