package llm

import (
	"context"
	"net/http"
	"time"
)

// 统一的 LLM 错误码，用于对齐 HTTP 状态与可重试性。
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "LLM_INVALID_REQUEST"  // 参数/格式错误
	ErrUnauthorized    ErrorCode = "LLM_UNAUTHORIZED"     // 未授权或 token 失效
	ErrForbidden       ErrorCode = "LLM_FORBIDDEN"        // 权限或内容策略拒绝
	ErrRateLimited     ErrorCode = "LLM_RATE_LIMITED"     // 上游限流
	ErrQuotaExceeded   ErrorCode = "LLM_QUOTA_EXCEEDED"   // 额度/配额用尽
	ErrModelOverloaded ErrorCode = "LLM_MODEL_OVERLOADED" // 模型过载
	ErrUpstreamTimeout ErrorCode = "LLM_UPSTREAM_TIMEOUT" // 上游超时
	ErrUpstreamError   ErrorCode = "LLM_UPSTREAM_ERROR"   // 上游 5xx/网络错误
)

// Error 是聊天请求阶段的上游错误。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ChatRequest 描述一次聊天请求。模型由 ChatModel 句柄绑定，
// ModelParams 在句柄的 CallSettings 之上做单次覆盖。
type ChatRequest struct {
	TraceID     string            `json:"trace_id,omitempty"`
	Messages    []Message         `json:"messages"`
	ModelParams ModelParams       `json:"model_params,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

type StreamChunk struct {
	ID           string     `json:"id,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Model        string     `json:"model,omitempty"`
	Index        int        `json:"index,omitempty"`
	Delta        Message    `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *ChatUsage `json:"usage,omitempty"` // 最终 chunk 可带 usage
	Err          *Error     `json:"error,omitempty"`
}

// Doer 是最小 HTTP 传输接口，*http.Client 天然满足。
// 调用方可以注入自定义实现以替换传输层（代理、录制回放、测试桩）。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestContext 是一次 Provider 创建解析出的请求上下文，
// 由该 Provider 产生的所有 ChatModel 只读共享。
type RequestContext struct {
	// Provider 标识，固定为 "sap-ai"。
	Provider string
	// BaseURL 是完整的 completion 地址。
	BaseURL string
	// Headers 每次调用都返回一份新的 header map。
	Headers func() map[string]string
	// HTTPClient 为空时由 ChatModel 自行选择默认传输。
	HTTPClient Doer
}

// ChatModel 是模型句柄：绑定模型 ID、合并后的 CallSettings 与 RequestContext。
type ChatModel interface {
	// Completion 发起同步聊天请求，返回完整响应
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Stream 发起流式聊天请求，返回增量响应通道
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error)

	// Name 返回 Provider 的唯一标识
	Name() string

	// ModelID 返回句柄绑定的模型 ID
	ModelID() string
}

// ChatModelConstructor 根据模型 ID、合并后的设置与请求上下文构造 ChatModel。
type ChatModelConstructor func(modelID string, settings CallSettings, rc RequestContext) ChatModel
