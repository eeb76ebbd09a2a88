package types

import "time"

// FileInfo 文件元数据视图.
type FileInfo struct {
	FileID     string     `json:"file_id"`
	Filename   string     `json:"filename"`
	Size       int64      `json:"size"`
	Checksum   string     `json:"checksum,omitempty"`
	MimeType   string     `json:"mime_type,omitempty"`
	UploadedBy string     `json:"uploaded_by,omitempty"`
	UploadDate time.Time  `json:"upload_date"`
	IsDeleted  bool       `json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	DeletedBy  string     `json:"deleted_by,omitempty"`
	SyncStatus string     `json:"sync_status,omitempty"`
}

// FileListRequest 文件列表查询参数.
type FileListRequest struct {
	Page int `form:"page" rule:"omitempty,min=1"`
	Size int `form:"size" rule:"omitempty,min=1,max=100"`
	// SortBy 排序字段，默认 upload_date
	SortBy string `form:"sort_by" rule:"omitempty,oneof=filename size upload_date"`
	// SortOrder asc 或 desc，默认 desc
	SortOrder string `form:"sort_order" rule:"omitempty,oneof=asc desc"`
	// Search 按文件名模糊匹配
	Search     string `form:"search"`
	UploadedBy string `form:"uploaded_by"`
	// IncludeDeleted 连同已软删除的文件一起返回
	IncludeDeleted bool `form:"include_deleted"`
	// DeletedOnly 只返回回收站内容，蕴含 IncludeDeleted
	DeletedOnly bool `form:"deleted_only"`
}

// FileListResponse 分页文件列表.
type FileListResponse struct {
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"total_pages"`
	Files      []FileInfo `json:"files"`
}

// RenameFileRequest 修改文件逻辑名（磁盘文件名不变）.
type RenameFileRequest struct {
	Filename string `json:"filename" binding:"required" rule:"filename"`
}

// BulkDownloadRequest 打包下载多个在用文件.
type BulkDownloadRequest struct {
	FileIDs []string `json:"file_ids" binding:"required" rule:"min=1,max=100,dive,required"`
}
