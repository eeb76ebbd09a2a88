package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/rule"
)

// FileService 文件生命周期：列表、软删除、恢复、改名、物理清除.
// 磁盘布局：在用文件在 active/yyyy/mm（按上传日期分区），
// 软删除移入 deleted/yyyy/mm（按删除日期分区），恢复按恢复时刻重新分区.
type FileService struct{ *VaultService }

// NewFileService 构造文件服务.
func NewFileService(c context.Context) *FileService {
	return &FileService{NewVaultService(c)}
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// listSortColumns 白名单排序字段，防止拼接注入.
var listSortColumns = map[string]string{
	"filename":    "filename",
	"size":        "size",
	"upload_date": "upload_date",
}

func fileInfoFromModel(f *model.File) types.FileInfo {
	return types.FileInfo{
		FileID:     f.ID,
		Filename:   f.Filename,
		Size:       f.Size,
		Checksum:   f.Checksum,
		MimeType:   f.MimeType,
		UploadedBy: f.UploadedBy,
		UploadDate: f.UploadDate,
		IsDeleted:  f.IsDeleted,
		DeletedAt:  f.DeletedAt,
		DeletedBy:  f.DeletedBy,
		SyncStatus: f.SyncStatus,
	}
}

// getFile 读取文件记录，不存在时返回 ErrNotFound.
func (s *FileService) getFile(ctx context.Context, fileID string) (*model.File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id required", ErrValidation)
	}

	var f model.File

	err := s.dbClient.GetDB().WithContext(ctx).Where("id = ?", fileID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, fileID)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &f, nil
}

// GetFile 返回单个文件的元数据.
func (s *FileService) GetFile(ctx context.Context, fileID string) (types.FileInfo, error) {
	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return types.FileInfo{}, err
	}

	return fileInfoFromModel(f), nil
}

// DownloadPath 返回在用文件的磁盘绝对路径.已软删除的文件不可下载.
func (s *FileService) DownloadPath(ctx context.Context, fileID string) (string, types.FileInfo, error) {
	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return "", types.FileInfo{}, err
	}

	if f.IsDeleted {
		return "", types.FileInfo{}, fmt.Errorf("%w: file %s is in trash", ErrConflict, fileID)
	}

	abs := s.disk.Abs(f.FilePath)
	if !s.disk.Exists(f.FilePath) {
		return "", types.FileInfo{}, fmt.Errorf("%w: file %s missing on disk", ErrStorage, fileID)
	}

	return abs, fileInfoFromModel(f), nil
}

// ListFiles 分页列出文件.默认只含在用文件；deleted_only 只看回收站.
func (s *FileService) ListFiles(ctx context.Context, req types.FileListRequest) (types.FileListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	size := req.Size
	if size < 1 {
		size = defaultPageSize
	}

	if size > maxPageSize {
		size = maxPageSize
	}

	q := s.dbClient.GetDB().WithContext(ctx).Model(&model.File{})

	switch {
	case req.DeletedOnly:
		q = q.Where("is_deleted = ?", true)
	case !req.IncludeDeleted:
		q = q.Where("is_deleted = ?", false)
	}

	if req.Search != "" {
		q = q.Where("filename LIKE ?", "%"+req.Search+"%")
	}

	if req.UploadedBy != "" {
		q = q.Where("uploaded_by = ?", req.UploadedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return types.FileListResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	column, ok := listSortColumns[req.SortBy]
	if !ok {
		column = "upload_date"
	}

	order := column + " DESC"
	if req.SortOrder == "asc" {
		order = column + " ASC"
	}

	var rows []model.File

	err := q.Order(order).
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return types.FileListResponse{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	files := make([]types.FileInfo, 0, len(rows))
	for i := range rows {
		files = append(files, fileInfoFromModel(&rows[i]))
	}

	totalPages := (int(total) + size - 1) / size

	return types.FileListResponse{
		Total:      int(total),
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
		Files:      files,
	}, nil
}

// SoftDelete 将文件移入回收站.已删除的文件重复删除返回 ErrConflict.
func (s *FileService) SoftDelete(ctx context.Context, fileID, actor string) (types.FileInfo, error) {
	fileLocks.Lock(fileID)
	defer fileLocks.Unlock(fileID)

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return types.FileInfo{}, err
	}

	if f.IsDeleted {
		return types.FileInfo{}, fmt.Errorf("%w: file %s already deleted", ErrConflict, fileID)
	}

	now := time.Now().UTC()
	dstRel := s.disk.DeletedRel(now, filepath.Base(f.FilePath))

	if err := s.disk.Move(f.FilePath, dstRel); err != nil {
		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	oldRel := f.FilePath
	f.FilePath = dstRel
	f.IsDeleted = true
	f.DeletedAt = &now
	f.DeletedBy = actor

	if err := s.dbClient.GetDB().WithContext(ctx).Save(f).Error; err != nil {
		// 回滚磁盘移动，保持 DB 与磁盘一致
		if mvErr := s.disk.Move(dstRel, oldRel); mvErr != nil {
			nlog.Logger().Error().Err(mvErr).Str("file_id", fileID).Msg("rollback move failed")
		}

		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishFileDeleted(*f, actor)

	nlog.Logger().Info().Str("file_id", fileID).Str("actor", actor).Msg("file soft-deleted")

	return fileInfoFromModel(f), nil
}

// Restore 将回收站中的文件恢复到在用树，分区按恢复时刻而非原上传日期.
// 未删除的文件恢复返回 ErrConflict.
func (s *FileService) Restore(ctx context.Context, fileID, actor string) (types.FileInfo, error) {
	fileLocks.Lock(fileID)
	defer fileLocks.Unlock(fileID)

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return types.FileInfo{}, err
	}

	if !f.IsDeleted {
		return types.FileInfo{}, fmt.Errorf("%w: file %s is not deleted", ErrConflict, fileID)
	}

	dstRel := s.disk.ActiveRel(time.Now().UTC(), filepath.Base(f.FilePath))

	if err := s.disk.Move(f.FilePath, dstRel); err != nil {
		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	oldRel := f.FilePath
	f.FilePath = dstRel
	f.IsDeleted = false
	f.DeletedAt = nil
	f.DeletedBy = ""

	if err := s.dbClient.GetDB().WithContext(ctx).Save(f).Error; err != nil {
		if mvErr := s.disk.Move(dstRel, oldRel); mvErr != nil {
			nlog.Logger().Error().Err(mvErr).Str("file_id", fileID).Msg("rollback move failed")
		}

		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishFileRestored(*f, actor)

	nlog.Logger().Info().Str("file_id", fileID).Str("actor", actor).Msg("file restored")

	return fileInfoFromModel(f), nil
}

// Rename 修改文件逻辑名.磁盘文件名以 file_id 为准，不随逻辑名变化.
// 回收站中的文件不可改名.
func (s *FileService) Rename(ctx context.Context, fileID, actor string, req types.RenameFileRequest) (types.FileInfo, error) {
	if !rule.ValidFilename(req.Filename) {
		return types.FileInfo{}, fmt.Errorf("%w: invalid filename %q", ErrValidation, req.Filename)
	}

	fileLocks.Lock(fileID)
	defer fileLocks.Unlock(fileID)

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return types.FileInfo{}, err
	}

	if f.IsDeleted {
		return types.FileInfo{}, fmt.Errorf("%w: file %s is in trash", ErrConflict, fileID)
	}

	oldName := f.Filename
	f.Filename = req.Filename

	if err := s.dbClient.GetDB().WithContext(ctx).Save(f).Error; err != nil {
		return types.FileInfo{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishFileRenamed(*f, oldName, actor)

	return fileInfoFromModel(f), nil
}

// Purge 物理删除回收站中的文件：先删磁盘再删记录.
// 仅允许清除已软删除的文件，在用文件返回 ErrConflict.
func (s *FileService) Purge(ctx context.Context, fileID, reason string) error {
	fileLocks.Lock(fileID)
	defer fileLocks.Unlock(fileID)

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}

	if !f.IsDeleted {
		return fmt.Errorf("%w: file %s is not deleted", ErrConflict, fileID)
	}

	return s.purgeLocked(ctx, f, reason)
}

// purgeLocked 执行物理清除，调用方必须已持有 fileLocks.
func (s *FileService) purgeLocked(ctx context.Context, f *model.File, reason string) error {
	if err := s.disk.Remove(f.FilePath); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Delete(&model.File{}, "id = ?", f.ID).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishFilePurged(*f, reason)

	nlog.Logger().Info().Str("file_id", f.ID).Str("reason", reason).Msg("file purged")

	return nil
}
