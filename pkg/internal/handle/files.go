package handle

import (
	"archive/zip"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
)

// ListFiles 分页列出文件.
//
//	@Summary	文件列表
//	@Tags		文件
//	@Produce	json
//	@Param		page			query		int		false	"页码(默认1)"
//	@Param		size			query		int		false	"每页条数(默认50, 最大100)"
//	@Param		sort_by			query		string	false	"排序字段: filename|size|upload_date"
//	@Param		sort_order		query		string	false	"asc|desc(默认desc)"
//	@Param		search			query		string	false	"文件名模糊匹配"
//	@Param		uploaded_by		query		string	false	"按上传者过滤"
//	@Param		include_deleted	query		bool	false	"连同回收站一起返回"
//	@Success	200				{object}	types.FileListResponse
//	@Failure	400				{object}	types.ErrorResponse
//	@Router		/api/v1/files [get]
func ListFiles(c *gin.Context) {
	var req types.FileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.ListFiles(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile 返回单个文件的元数据.
//
//	@Summary	文件详情
//	@Tags		文件
//	@Produce	json
//	@Param		id	path		string	true	"文件 id"
//	@Success	200	{object}	types.FileInfo
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/files/{id} [get]
func GetFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	info, err := svc.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// DownloadFile 下载单个在用文件.
//
//	@Summary	下载文件
//	@Tags		文件
//	@Produce	octet-stream
//	@Param		id	path		string	true	"文件 id"
//	@Success	200	{file}		file
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	409	{object}	types.ErrorResponse	"文件在回收站"
//	@Router		/api/v1/files/{id}/download [get]
func DownloadFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	path, info, err := svc.DownloadPath(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if info.MimeType != "" {
		c.Header("Content-Type", info.MimeType)
	}

	c.Header("Content-Disposition", `attachment; filename="`+escapeQuotes(info.Filename)+`"`)
	c.File(path)
}

// BulkDownload 把多个在用文件打包成 zip 返回.
// 逐个写入响应流，不在内存里攒整包.
//
//	@Summary	打包下载
//	@Tags		文件
//	@Accept		json
//	@Produce	application/zip
//	@Param		body	body		types.BulkDownloadRequest	true	"文件 id 列表"
//	@Success	200		{file}		file
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/files/bulk-download [post]
func BulkDownload(c *gin.Context) {
	l := log.Logger()

	var req types.BulkDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	svc := service.NewFileService(c.Request.Context())

	// 先整体校验，避免 zip 写到一半才发现文件缺失
	type entry struct {
		path string
		name string
	}

	entries := make([]entry, 0, len(req.FileIDs))
	seen := make(map[string]int)

	for _, id := range req.FileIDs {
		path, info, err := svc.DownloadPath(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}

		name := info.Filename

		// 同名文件加序号后缀区分
		if n := seen[name]; n > 0 {
			name = dedupName(name, n)
		}

		seen[info.Filename]++

		entries = append(entries, entry{path: path, name: name})
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="files.zip"`)

	zw := zip.NewWriter(c.Writer)

	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			l.Error().Err(err).Msg("zip create header failed")
			return
		}

		f, err := os.Open(e.path)
		if err != nil {
			l.Error().Err(err).Str("path", e.path).Msg("open file for zip failed")
			return
		}

		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			l.Error().Err(err).Msg("zip write failed")

			return
		}

		f.Close()
	}

	if err := zw.Close(); err != nil {
		l.Error().Err(err).Msg("zip close failed")
	}
}

// RenameFile 修改文件逻辑名.
//
//	@Summary	重命名文件
//	@Tags		文件
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"文件 id"
//	@Param		body	body		types.RenameFileRequest	true	"新文件名"
//	@Success	200		{object}	types.FileInfo
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	409		{object}	types.ErrorResponse	"文件在回收站"
//	@Router		/api/v1/files/{id}/rename [post]
func RenameFile(c *gin.Context) {
	var req types.RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Rename(c.Request.Context(), c.Param("id"), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// DeleteFile 软删除：文件移入回收站，保留期内可恢复.
//
//	@Summary	删除文件（移入回收站）
//	@Tags		文件
//	@Produce	json
//	@Param		id	path		string	true	"文件 id"
//	@Success	200	{object}	types.FileInfo
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	409	{object}	types.ErrorResponse	"文件已在回收站"
//	@Router		/api/v1/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	info, err := svc.SoftDelete(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// dedupName 给重名的 zip 条目追加序号：a.txt -> a (1).txt.
func dedupName(name string, n int) string {
	ext := ""
	base := name

	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}

	return base + " (" + strconv.Itoa(n) + ")" + ext
}
