package service

import "errors"

// 服务层错误分类，handler 依赖 errors.Is 映射 HTTP 状态码：
// ErrValidation→400、ErrIntegrity→422、ErrNotFound→404、ErrConflict→409、ErrStorage→500.
var (
	// ErrValidation 请求参数或状态前置条件不满足.
	ErrValidation = errors.New("validation failed")
	// ErrIntegrity 校验和不匹配，上传方可重试.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrNotFound 目标资源不存在.
	ErrNotFound = errors.New("not found")
	// ErrConflict 操作与资源当前状态冲突（如重复删除）.
	ErrConflict = errors.New("state conflict")
	// ErrStorage 磁盘或数据库层故障.
	ErrStorage = errors.New("storage failure")
)
