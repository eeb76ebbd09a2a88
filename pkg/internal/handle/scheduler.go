package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/middleware"
)

// SchedulerTasks 列出全部维护任务.
//
//	@Summary	任务列表
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string][]types.TaskInfo
//	@Router		/api/v1/scheduler/tasks [get]
func SchedulerTasks(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	tasks, err := runner.Tasks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// SchedulerTask 返回单个任务详情.
//
//	@Summary	任务详情
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Success	200		{object}	types.TaskInfo
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/tasks/{name} [get]
func SchedulerTask(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	task, err := runner.Task(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, task)
}

// SchedulerPauseTask 暂停任务的到点触发.
//
//	@Summary	暂停任务
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Success	200		{object}	types.MessageResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/tasks/{name}/pause [post]
func SchedulerPauseTask(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	if err := runner.Pause(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "task paused"})
}

// SchedulerResumeTask 恢复任务的到点触发.
//
//	@Summary	恢复任务
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Success	200		{object}	types.MessageResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/tasks/{name}/resume [post]
func SchedulerResumeTask(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	if err := runner.Resume(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "task resumed"})
}

// SchedulerTriggerTask 立即触发任务运行一次.暂停中的任务也会运行.
//
//	@Summary	手动触发任务
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Success	202		{object}	types.TriggerResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/tasks/{name}/trigger [post]
func SchedulerTriggerTask(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	resp, err := runner.Trigger(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// SchedulerTaskHistory 返回任务最近的执行历史.
//
//	@Summary	任务执行历史
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Param		limit	query		int		false	"返回条数(默认20)"
//	@Success	200		{object}	map[string][]types.ExecutionInfo
//	@Router		/api/v1/scheduler/tasks/{name}/history [get]
func SchedulerTaskHistory(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	execs, err := runner.Executions(c.Param("name"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": execs})
}

// SchedulerStatus 返回调度器整体状态.
//
//	@Summary	调度器状态
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	types.SchedulerStatus
//	@Router		/api/v1/scheduler/status [get]
func SchedulerStatus(c *gin.Context) {
	runner := middleware.GetRunner(c)
	if runner == nil {
		c.JSON(http.StatusOK, types.SchedulerStatus{Running: false})
		return
	}

	c.JSON(http.StatusOK, runner.Status())
}
