package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
)

const healthTimeout = 2 * time.Second

// Health 整体健康检查：DB 可达且磁盘树就绪即为健康.
func Health(c *gin.Context) {
	components := gin.H{}
	healthy := true

	if err := pingDB(c); err != nil {
		components["db"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		components["db"] = gin.H{"status": "ok"}
	}

	disk := ctxPkg.GetDisk(c.Request.Context())
	if disk == nil {
		components["disk"] = gin.H{"status": "unhealthy", "error": "disk store not initialized"}
		healthy = false
	} else if _, err := disk.Usage(); err != nil {
		components["disk"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		components["disk"] = gin.H{"status": "ok"}
	}

	status := http.StatusOK
	overall := "ok"

	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{"status": overall, "components": components})
}

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	if err := pingDB(c); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}

// HealthMQ 消息队列健康检查.未启用 MQ 时视为不可用.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "mq", "status": "unhealthy", "error": "mq client not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok"})
}

func pingDB(c *gin.Context) error {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil { // dbc.DB 来自于嵌入的 *gorm.DB
		return errDBNotReady
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

var errDBNotReady = errors.New("db client not initialized")
