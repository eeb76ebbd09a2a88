// Package api 暴露对外 HTTP API 的注册入口，供 app 装配时调用.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/router"
)

// RegisterGroup 将全部业务路由注册到 /api/v1 分组.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterAPIRoutes(e.Group("/api/v1"))

	return e
}
