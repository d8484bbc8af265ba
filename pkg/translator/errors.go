package translator

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMissingAPIKey 未配置 API 密钥，在构造客户端时立即返回
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyResponse 模型返回空内容
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrUnsupportedAPIType 不支持的 api_type
	ErrUnsupportedAPIType = errors.New("unsupported api type")
)

// APIError 是聊天接口返回的 HTTP 错误
type APIError struct {
	StatusCode int
	Err        error
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("chat completion failed with status %d: %v", e.StatusCode, e.Err)
}

// Unwrap 返回原因错误
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable 限流与服务端错误可以重试，其余 4xx 不重试
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// isRetryable 判断错误是否值得重试，非 HTTP 错误（网络错误等）视为可重试
func isRetryable(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}
