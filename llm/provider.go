package llm

import (
	"context"
	"time"
)

// 统一的 LLM 错误码，用于对齐 HTTP 状态、可重试性与降级策略。
type ErrorCode string

const (
	ErrInvalidEndpoint   ErrorCode = "LLM_INVALID_ENDPOINT"   // 端点 URL 非法，构造期失败
	ErrInvalidResponse   ErrorCode = "LLM_INVALID_RESPONSE"   // 200 但缺少补全内容，不可重试
	ErrAPIError          ErrorCode = "LLM_API_ERROR"          // 上游 4xx 拒绝，不可重试
	ErrRateLimited       ErrorCode = "LLM_RATE_LIMITED"       // 上游限流（429）
	ErrUpstreamError     ErrorCode = "LLM_UPSTREAM_ERROR"     // 上游 5xx/过载
	ErrDecode            ErrorCode = "LLM_DECODE"             // 成功响应解码失败
	ErrNetwork           ErrorCode = "LLM_NETWORK"            // 瞬时网络故障（允许列表内）
	ErrStreamUnsupported ErrorCode = "LLM_STREAM_UNSUPPORTED" // Provider 无流式实现
	ErrStreamFailed      ErrorCode = "LLM_STREAM_FAILED"      // 流式传输中途终止
)

// Error 归一化所有厂商的失败：HTTP 状态、可重试性与出错的 Provider
// 都落到同一个形状上，重试层和路由层只看这里。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// CompletionRequest 描述一次补全调用。路由与 Provider 都不会修改调用方的请求。
type CompletionRequest struct {
	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt"`
	// Temperature 原样透传给上游，取值范围 0.0-2.0。
	Temperature float32 `json:"temperature,omitempty"`
	// MaxTokens 为 0 时使用上游默认值；线协议强制要求该字段的 Provider
	// 自行补默认值。
	MaxTokens int `json:"max_tokens,omitempty"`
	// RequireJSON 要求上游返回单个 JSON 对象，由各 Provider 按自身机制实现。
	RequireJSON bool `json:"require_json,omitempty"`
	// PreferredTier 仅供路由选择首个尝试档位，Provider 忽略该字段。
	PreferredTier CostTier `json:"preferred_tier,omitempty"`
}

// Completion 是一次非流式补全的结果。
type Completion struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
	Usage    Usage  `json:"usage,omitempty"`
}

// Usage 归一化各家上游的 token 计量字段。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// StreamChunk 是流式补全的一个增量。Done 或 Err 非空即为终止块，
// 之后通道关闭。
type StreamChunk struct {
	Text string `json:"text,omitempty"`
	Done bool   `json:"done,omitempty"`
	Err  *Error `json:"error,omitempty"`
}

// Capabilities 是 Provider 对外公布的能力记录，生命周期内不可变。
type Capabilities struct {
	Name      string   `json:"name"`
	Tier      CostTier `json:"tier"`
	Streaming bool     `json:"streaming"`
}

// HealthStatus 表示 Provider 健康检查结果，仅驻留内存。
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Err     string        `json:"error,omitempty"`
}

// Provider 定义统一的 LLM 适配接口。瞬时故障的恢复由 Provider 自己负责：
// 返回错误意味着其重试预算已耗尽，路由层据此降级到下一档位，绝不代替
// Provider 重试。
type Provider interface {
	// Complete 发起同步补全请求，返回完整文本
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// HealthCheck 执行轻量级健康检查（用于探活），返回延迟与可用性信息。
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name 返回 Provider 的唯一标识
	Name() string

	// Capabilities 返回能力记录（名称、归属档位、是否支持流式）
	Capabilities() Capabilities
}

// StreamingProvider 由具备 SSE 流式端点的 Provider 额外实现。
// 能力探测同时依赖接口断言与 Capabilities().Streaming，两者必须一致。
type StreamingProvider interface {
	Provider

	// Stream 发起流式补全，通道在终止块之后关闭；取消 ctx 即可中途放弃。
	Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error)
}
