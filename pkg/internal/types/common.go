package types

// ErrorResponse 统一错误响应体.
type ErrorResponse struct {
	Error string `json:"error"`
	// Detail 可选的细化信息，如校验失败的字段
	Detail string `json:"detail,omitempty"`
}

// MessageResponse 简单操作确认.
type MessageResponse struct {
	Message string `json:"message"`
}
