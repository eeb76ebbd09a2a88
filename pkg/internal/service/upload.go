package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/rule"
)

// UploadService 分片上传会话引擎.
// 会话本身无状态：upload_id 由 init 发放，分片元数据落在 upload_chunks 表，
// 进程重启后未完成的会话仍可续传或被 TTL 回收.
type UploadService struct{ *VaultService }

// NewUploadService 构造上传服务.
func NewUploadService(c context.Context) *UploadService {
	return &UploadService{NewVaultService(c)}
}

// InitUpload 初始化上传会话，发放 upload_id 并回告分片大小.
func (s *UploadService) InitUpload(ctx context.Context, req types.InitUploadRequest) (types.InitUploadResponse, error) {
	if !rule.ValidFilename(req.Filename) {
		return types.InitUploadResponse{}, fmt.Errorf("%w: invalid filename %q", ErrValidation, req.Filename)
	}

	if req.Size <= 0 {
		return types.InitUploadResponse{}, fmt.Errorf("%w: size must be positive", ErrValidation)
	}

	if req.Size > s.cfg.MaxUploadBytes {
		return types.InitUploadResponse{}, fmt.Errorf("%w: size %d exceeds limit %d", ErrValidation, req.Size, s.cfg.MaxUploadBytes)
	}

	if req.TotalChunks <= 0 {
		return types.InitUploadResponse{}, fmt.Errorf("%w: total_chunks must be positive", ErrValidation)
	}

	uploadID := uuid.NewString()

	if err := s.disk.EnsureUploadDir(uploadID); err != nil {
		return types.InitUploadResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	nlog.Logger().Debug().
		Str("upload_id", uploadID).
		Str("filename", req.Filename).
		Int64("size", req.Size).
		Int("total_chunks", req.TotalChunks).
		Msg("upload session initialized")

	return types.InitUploadResponse{
		UploadID:    uploadID,
		ChunkSize:   s.cfg.ChunkSizeBytes,
		TotalChunks: req.TotalChunks,
		ExpiresAt:   time.Now().Add(s.cfg.ChunkTTL()).UTC(),
	}, nil
}

// UploadChunk 落盘一个分片.分片按编号幂等：重传同一编号覆盖旧数据并刷新 TTL.
// declaredChecksum 必填，先比对摘要再提交：不符返回 ErrIntegrity 且不落盘，
// 该编号上已提交的旧分片不受影响.
func (s *UploadService) UploadChunk(
	ctx context.Context,
	uploadID string,
	chunkNumber, totalChunks int,
	declaredChecksum string,
	r io.Reader,
) (types.UploadChunkResponse, error) {
	if uploadID == "" {
		return types.UploadChunkResponse{}, fmt.Errorf("%w: upload id required", ErrValidation)
	}

	if chunkNumber < 0 || totalChunks <= 0 || chunkNumber >= totalChunks {
		return types.UploadChunkResponse{}, fmt.Errorf("%w: chunk %d of %d out of range", ErrValidation, chunkNumber, totalChunks)
	}

	if !rule.ValidSHA256Hex(declaredChecksum) {
		return types.UploadChunkResponse{}, fmt.Errorf("%w: chunk checksum must be 64 lowercase hex chars", ErrValidation)
	}

	uploadLocks.Lock(uploadID)
	defer uploadLocks.Unlock(uploadID)

	size, sum, err := s.disk.WriteChunk(uploadID, chunkNumber, declaredChecksum, r)
	if err != nil {
		if errors.Is(err, local.ErrChecksumMismatch) {
			return types.UploadChunkResponse{}, fmt.Errorf("%w: chunk %d checksum mismatch", ErrIntegrity, chunkNumber)
		}

		return types.UploadChunkResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	now := time.Now().UTC()
	chunk := model.UploadChunk{
		UploadID:    uploadID,
		ChunkNumber: chunkNumber,
		TotalChunks: totalChunks,
		Size:        size,
		Checksum:    sum,
		FilePath:    fmt.Sprintf("temp/%s/chunk_%d", uploadID, chunkNumber),
		UploadedAt:  now,
		ExpiresAt:   now.Add(s.cfg.ChunkTTL()),
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	// 同一编号重传：覆盖旧记录
	var existing model.UploadChunk

	err = dbx.Where("upload_id = ? AND chunk_number = ?", uploadID, chunkNumber).First(&existing).Error

	switch {
	case err == nil:
		chunk.ID = existing.ID

		if err := dbx.Save(&chunk).Error; err != nil {
			return types.UploadChunkResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := dbx.Create(&chunk).Error; err != nil {
			return types.UploadChunkResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	default:
		return types.UploadChunkResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.UploadBytesTotal.Add(float64(size))

	return types.UploadChunkResponse{
		UploadID:    uploadID,
		ChunkNumber: chunkNumber,
		Size:        size,
		Checksum:    sum,
		ExpiresAt:   chunk.ExpiresAt,
	}, nil
}

// CompleteUpload 合并分片为正式文件.
//   - 分片数与首个分片声明的 total_chunks 不符或编号不连续：ErrValidation，分片保留
//   - 合并结果与声明的整文件校验和不符：ErrIntegrity，合并产物删除、分片保留以便重试
//   - 校验通过：写 files 记录，清理分片与暂存目录
func (s *UploadService) CompleteUpload(ctx context.Context, uploadID, actor string, req types.CompleteUploadRequest) (types.FileInfo, error) {
	if uploadID == "" {
		return types.FileInfo{}, fmt.Errorf("%w: upload id required", ErrValidation)
	}

	if !rule.ValidFilename(req.Filename) {
		return types.FileInfo{}, fmt.Errorf("%w: invalid filename %q", ErrValidation, req.Filename)
	}

	if !rule.ValidSHA256Hex(req.Checksum) {
		return types.FileInfo{}, fmt.Errorf("%w: checksum must be 64 lowercase hex chars", ErrValidation)
	}

	uploadLocks.Lock(uploadID)
	defer uploadLocks.Unlock(uploadID)

	dbx := s.dbClient.GetDB().WithContext(ctx)

	var chunks []model.UploadChunk
	if err := dbx.Where("upload_id = ?", uploadID).Order("chunk_number ASC").Find(&chunks).Error; err != nil {
		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if len(chunks) == 0 {
		return types.FileInfo{}, fmt.Errorf("%w: upload session %s has no chunks", ErrNotFound, uploadID)
	}

	// 以首个分片声明的总数为准做一致性检查.分片保留，补传后可重试
	declared := chunks[0].TotalChunks
	if len(chunks) != declared {
		metrics.UploadsCompleted.WithLabelValues("chunk_mismatch").Inc()

		return types.FileInfo{}, fmt.Errorf("%w: have %d chunks, expected %d", ErrConflict, len(chunks), declared)
	}

	for i, c := range chunks {
		if c.ChunkNumber != i {
			metrics.UploadsCompleted.WithLabelValues("chunk_mismatch").Inc()

			return types.FileInfo{}, fmt.Errorf("%w: chunk %d missing", ErrConflict, i)
		}
	}

	now := time.Now().UTC()
	fileID := uuid.NewString()
	ext := filepath.Ext(req.Filename)
	dstRel := s.disk.ActiveRel(now, fileID+ext)

	size, sum, err := s.disk.Assemble(uploadID, declared, dstRel)
	if err != nil {
		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if sum != req.Checksum {
		// 合并产物作废，分片保留，客户端可修复后重试 complete
		_ = s.disk.Remove(dstRel)

		metrics.UploadsCompleted.WithLabelValues("checksum_mismatch").Inc()

		return types.FileInfo{}, fmt.Errorf("%w: assembled checksum %s does not match declared %s", ErrIntegrity, sum, req.Checksum)
	}

	file := model.File{
		ID:         fileID,
		Filename:   req.Filename,
		FilePath:   dstRel,
		Size:       size,
		Checksum:   sum,
		MimeType:   req.MimeType,
		UploadedBy: actor,
		UploadDate: now,
		SyncStatus: model.SyncPending,
	}

	if err := dbx.Create(&file).Error; err != nil {
		_ = s.disk.Remove(dstRel)

		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// 分片清理失败不影响结果，过期回收任务会兜底
	if err := dbx.Where("upload_id = ?", uploadID).Delete(&model.UploadChunk{}).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("upload_id", uploadID).Msg("chunk rows cleanup failed")
	}

	if err := s.disk.RemoveUpload(uploadID); err != nil {
		nlog.Logger().Warn().Err(err).Str("upload_id", uploadID).Msg("upload dir cleanup failed")
	}

	metrics.UploadsCompleted.WithLabelValues("ok").Inc()

	s.publishFileStored(file, uploadID, actor)

	nlog.Logger().Info().
		Str("file_id", fileID).
		Str("filename", req.Filename).
		Int64("size", size).
		Msg("upload completed")

	return fileInfoFromModel(&file), nil
}

// CancelUpload 取消会话并回收分片.对未知会话幂等，返回 0.
func (s *UploadService) CancelUpload(ctx context.Context, uploadID, actor string) (types.CancelUploadResponse, error) {
	if uploadID == "" {
		return types.CancelUploadResponse{}, fmt.Errorf("%w: upload id required", ErrValidation)
	}

	uploadLocks.Lock(uploadID)
	defer uploadLocks.Unlock(uploadID)

	dbx := s.dbClient.GetDB().WithContext(ctx)

	tx := dbx.Where("upload_id = ?", uploadID).Delete(&model.UploadChunk{})
	if tx.Error != nil {
		return types.CancelUploadResponse{}, fmt.Errorf("%w: %v", ErrStorage, tx.Error)
	}

	if err := s.disk.RemoveUpload(uploadID); err != nil {
		return types.CancelUploadResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	removed := int(tx.RowsAffected)

	if removed > 0 {
		s.publishUploadCancelled(uploadID, removed, actor)
	}

	return types.CancelUploadResponse{UploadID: uploadID, ChunksRemoved: removed}, nil
}
