package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站路由.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trash := g.Group("/trash")
	{
		trash.GET("", handle.ListTrash)
		trash.POST("/:id/restore", handle.RestoreFile)
		// 物理删除，不可恢复
		trash.DELETE("/:id", handle.PurgeFile)
	}
}
