package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterStatsRoutes 注册统计路由.
func RegisterStatsRoutes(g *gin.RouterGroup) {
	stats := g.Group("/stats")
	{
		stats.GET("/storage", handle.StorageStats)
	}
}
