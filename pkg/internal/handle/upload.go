package handle

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
)

// InitUpload 初始化分片上传会话.
//
//	@Summary	初始化上传会话
//	@Tags		上传
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.InitUploadRequest	true	"文件声明"
//	@Success	200		{object}	types.InitUploadResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Router		/api/v1/uploads [post]
func InitUpload(c *gin.Context) {
	var req types.InitUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	svc := service.NewUploadService(c.Request.Context())

	resp, err := svc.InitUpload(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadChunk 上传一个分片.
// 分片数据既可以作为 multipart 表单的 chunk 字段，也可以直接放请求体.
//
//	@Summary	上传分片
//	@Tags		上传
//	@Accept		octet-stream
//	@Produce	json
//	@Param		id				path		string	true	"上传会话 id"
//	@Param		n				path		int		true	"分片编号（从 0 开始）"
//	@Param		total_chunks	query		int		true	"分片总数"
//	@Param		checksum		query		string	true	"分片 SHA-256（hex），也可放 X-Chunk-Checksum 请求头"
//	@Success	200				{object}	types.UploadChunkResponse
//	@Failure	400				{object}	types.ErrorResponse
//	@Failure	422				{object}	types.ErrorResponse
//	@Router		/api/v1/uploads/{id}/chunks/{n} [put]
func UploadChunk(c *gin.Context) {
	uploadID := c.Param("id")

	chunkNumber, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid chunk number"})
		return
	}

	totalChunks, err := strconv.Atoi(c.Query("total_chunks"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "total_chunks required"})
		return
	}

	declared := c.Query("checksum")
	if declared == "" {
		declared = c.GetHeader("X-Chunk-Checksum")
	}

	body, cleanup, err := chunkReader(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	defer cleanup()

	svc := service.NewUploadService(c.Request.Context())

	resp, err := svc.UploadChunk(c.Request.Context(), uploadID, chunkNumber, totalChunks, declared, body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// chunkReader 解析分片数据来源：multipart 的 chunk 字段或原始请求体.
func chunkReader(c *gin.Context) (io.Reader, func(), error) {
	ct := c.ContentType()
	if ct == "multipart/form-data" {
		fh, err := c.FormFile("chunk")
		if err != nil {
			return nil, func() {}, err
		}

		f, err := fh.Open()
		if err != nil {
			return nil, func() {}, err
		}

		return f, func() { _ = f.Close() }, nil
	}

	return c.Request.Body, func() {}, nil
}

// CompleteUpload 合并分片，生成正式文件.
//
//	@Summary	完成上传
//	@Tags		上传
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"上传会话 id"
//	@Param		body	body		types.CompleteUploadRequest	true	"最终文件声明"
//	@Success	200		{object}	types.FileInfo
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	409		{object}	types.ErrorResponse	"分片数量不符，补传后可重试"
//	@Failure	422		{object}	types.ErrorResponse	"校验和不符，分片保留可重试"
//	@Router		/api/v1/uploads/{id}/complete [post]
func CompleteUpload(c *gin.Context) {
	l := log.Logger()
	uploadID := c.Param("id")

	var req types.CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	svc := service.NewUploadService(c.Request.Context())

	info, err := svc.CompleteUpload(c.Request.Context(), uploadID, actor(c), req)
	if err != nil {
		l.Warn().Err(err).Str("upload_id", uploadID).Msg("complete upload failed")
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// CancelUpload 取消上传会话并回收分片.
//
//	@Summary	取消上传
//	@Tags		上传
//	@Produce	json
//	@Param		id	path		string	true	"上传会话 id"
//	@Success	200	{object}	types.CancelUploadResponse
//	@Failure	400	{object}	types.ErrorResponse
//	@Router		/api/v1/uploads/{id} [delete]
func CancelUpload(c *gin.Context) {
	svc := service.NewUploadService(c.Request.Context())

	resp, err := svc.CancelUpload(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
