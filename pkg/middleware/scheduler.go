// Package middleware 提供中间件功能.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/jobs"
)

type runnerKey struct{}

// SchedulerMiddleware 将任务运行器注入到 context 中，供调度管理接口使用.
func SchedulerMiddleware(runner *jobs.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), runnerKey{}, runner)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRunner 从 context 中获取任务运行器，未注入时返回 nil.
func GetRunner(c *gin.Context) *jobs.Runner {
	if r, ok := c.Request.Context().Value(runnerKey{}).(*jobs.Runner); ok {
		return r
	}

	return nil
}
