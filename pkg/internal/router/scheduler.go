package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/middleware"
)

// RegisterSchedulerRoutes 注册调度器管理路由.调度管理属于运维面，要求 admin 角色.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	sched := g.Group("/scheduler", middleware.RequireMinRole(middleware.RoleAdmin))
	{
		sched.GET("/status", handle.SchedulerStatus)

		tasks := sched.Group("/tasks")
		{
			tasks.GET("", handle.SchedulerTasks)
			tasks.GET("/:name", handle.SchedulerTask)
			tasks.GET("/:name/history", handle.SchedulerTaskHistory)
			tasks.POST("/:name/pause", handle.SchedulerPauseTask)
			tasks.POST("/:name/resume", handle.SchedulerResumeTask)
			// 手动触发绕过暂停
			tasks.POST("/:name/trigger", handle.SchedulerTriggerTask)
		}
	}
}
