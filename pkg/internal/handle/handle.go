// Package handle 实现 HTTP 请求处理器.参数绑定和状态码映射在这里，
// 业务规则在 service 层.
package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// actor 提取操作者标识：oauth2-proxy 注入的请求头优先，
// 开发/测试模式允许 query 参数兜底.
func actor(c *gin.Context) string {
	for _, h := range []string{"X-Auth-Request-User", "X-Forwarded-User", "X-Auth-Request-Email", "X-Forwarded-Email"} {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	if gin.Mode() != gin.ReleaseMode {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

// writeError 把 service 层的错误语义映射为 HTTP 状态码.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrIntegrity):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	c.JSON(status, types.ErrorResponse{Error: err.Error()})
}
