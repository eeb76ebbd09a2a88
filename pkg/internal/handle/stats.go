package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
)

// StorageStats 返回存储容量与文件状态统计.
//
//	@Summary	存储统计
//	@Tags		统计
//	@Produce	json
//	@Success	200	{object}	types.StorageStats
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/api/v1/stats/storage [get]
func StorageStats(c *gin.Context) {
	svc := service.NewStatsService(c.Request.Context())

	stats, err := svc.StorageStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
