package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// ListTrash 列出回收站内容.
//
//	@Summary	回收站列表
//	@Tags		回收站
//	@Produce	json
//	@Param		page	query		int	false	"页码(默认1)"
//	@Param		size	query		int	false	"每页条数(默认50, 最大100)"
//	@Success	200		{object}	types.FileListResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Router		/api/v1/trash [get]
func ListTrash(c *gin.Context) {
	var req types.FileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	req.DeletedOnly = true

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.ListFiles(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RestoreFile 把回收站中的文件恢复到在用树.
//
//	@Summary	恢复文件
//	@Tags		回收站
//	@Produce	json
//	@Param		id	path		string	true	"文件 id"
//	@Success	200	{object}	types.FileInfo
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	409	{object}	types.ErrorResponse	"文件不在回收站"
//	@Router		/api/v1/trash/{id}/restore [post]
func RestoreFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Restore(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// PurgeFile 物理删除回收站中的文件，不可恢复.
//
//	@Summary	彻底删除文件
//	@Tags		回收站
//	@Produce	json
//	@Param		id	path		string	true	"文件 id"
//	@Success	200	{object}	types.MessageResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	409	{object}	types.ErrorResponse	"文件不在回收站"
//	@Router		/api/v1/trash/{id} [delete]
func PurgeFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	if err := svc.Purge(c.Request.Context(), c.Param("id"), "manual"); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "file purged"})
}
