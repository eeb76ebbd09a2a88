package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件生命周期路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	files := g.Group("/files")
	{
		// 列表/搜索
		files.GET("", handle.ListFiles)
		// 批量打包下载
		files.POST("/bulk-download", handle.BulkDownload)

		single := files.Group("/:id")
		{
			single.GET("", handle.GetFile)
			single.GET("/download", handle.DownloadFile)
			single.POST("/rename", handle.RenameFile)
			// 软删除，移入回收站
			single.DELETE("", handle.DeleteFile)
		}
	}
}
