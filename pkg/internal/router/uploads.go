package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterUploadRoutes 注册分片上传会话路由.
func RegisterUploadRoutes(g *gin.RouterGroup) {
	uploads := g.Group("/uploads")
	{
		// 初始化会话
		uploads.POST("", handle.InitUpload)

		session := uploads.Group("/:id")
		{
			// 上传分片，PUT 幂等可重传
			session.PUT("/chunks/:n", handle.UploadChunk)
			// 合并分片
			session.POST("/complete", handle.CompleteUpload)
			// 取消会话
			session.DELETE("", handle.CancelUpload)
		}
	}
}
