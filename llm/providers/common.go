package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Axionautomation/momentum/internal/httpclient"
	"github.com/Axionautomation/momentum/llm"
)

// Options 是各 Provider 共享的构造配置。
// 早期每个 Provider 都维护自己的副本，这里统一成单一定义。
type Options struct {
	APIKey     string
	BaseURL    string        // 为空时使用各 Provider 的默认端点
	Model      string        // 为空时使用各 Provider 的默认模型
	Timeout    time.Duration // 单次 HTTP 尝试的超时（非整个重试序列）
	MaxRetries int           // <=0 时取 retry.DefaultMaxRetries
	HTTPClient *http.Client  // 为空时使用共享传输层
	Logger     *zap.Logger
}

// DefaultTimeout 是单次尝试的默认超时。
const DefaultTimeout = 60 * time.Second

// Normalize 补齐零值字段并校验端点，返回解析后的 BaseURL。
func (o *Options) Normalize(defaultBaseURL, defaultModel, provider string) (*url.URL, error) {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	base, err := url.Parse(o.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &llm.Error{
			Code:     llm.ErrInvalidEndpoint,
			Message:  fmt.Sprintf("invalid base url %q", o.BaseURL),
			Provider: provider,
		}
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = httpclient.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return base, nil
}

// MapHTTPError 将 HTTP 状态码映射为带有合适重试标记的 llm.Error。
// 这是所有 Provider 使用的通用错误映射函数：429 与 5xx（含 529 过载）
// 可重试，其余 4xx 为终态拒绝。
func MapHTTPError(status int, msg string, provider string) *llm.Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &llm.Error{
			Code:       llm.ErrRateLimited,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	case status >= 500 || status == 529:
		return &llm.Error{
			Code:       llm.ErrUpstreamError,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	default:
		return &llm.Error{
			Code:       llm.ErrAPIError,
			Message:    msg,
			HTTPStatus: status,
			Provider:   provider,
		}
	}
}

// NetworkError 将允许名单内的传输故障包装为 llm.Error。
// 走到这里意味着重试预算已经耗尽，Retryable 仅标记错误类别。
func NetworkError(provider string, err error) *llm.Error {
	return &llm.Error{
		Code:      llm.ErrNetwork,
		Message:   err.Error(),
		Retryable: true,
		Provider:  provider,
	}
}

// ReadErrorMessage 读取响应体中的错误消息。
// 依次尝试：结构化 JSON 错误、原始文本、"status code N" 兜底。
func ReadErrorMessage(body io.Reader, status int) string {
	data, err := io.ReadAll(io.LimitReader(body, 32<<10))
	if err != nil {
		return fmt.Sprintf("status code %d", status)
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	if raw := strings.TrimSpace(string(data)); raw != "" {
		return raw
	}
	return fmt.Sprintf("status code %d", status)
}

// OpenAI 兼容 API 通用类型，由 Groq 与 OpenAI 两个 Bearer 认证的
// Provider 共享。

// OpenAICompatMessage 表示 OpenAI 兼容的消息格式.
type OpenAICompatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

// OpenAICompatResponseFormat 表示结构化输出要求.
type OpenAICompatResponseFormat struct {
	Type string `json:"type"`
}

// OpenAICompatRequest 表示 OpenAI 兼容的聊天完成请求.
type OpenAICompatRequest struct {
	Model          string                      `json:"model"`
	Messages       []OpenAICompatMessage       `json:"messages"`
	MaxTokens      int                         `json:"max_tokens,omitempty"`
	Temperature    float32                     `json:"temperature,omitempty"`
	ResponseFormat *OpenAICompatResponseFormat `json:"response_format,omitempty"`
	Stream         bool                        `json:"stream,omitempty"`
}

// OpenAICompatChoice 表示 OpenAI 兼容响应中的单个选项.
// Message 在同步响应中出现，Delta 在流式增量中出现。
type OpenAICompatChoice struct {
	Index        int                  `json:"index"`
	FinishReason string               `json:"finish_reason"`
	Message      OpenAICompatMessage  `json:"message"`
	Delta        *OpenAICompatMessage `json:"delta,omitempty"`
}

// OpenAICompatUsage token 用量统计，OpenAI 与 Groq 响应共用这个形状.
type OpenAICompatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAICompatResponse 表示 OpenAI 兼容的聊天完成（或流式增量）响应.
type OpenAICompatResponse struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []OpenAICompatChoice `json:"choices"`
	Usage   *OpenAICompatUsage   `json:"usage,omitempty"`
	Created int64                `json:"created,omitempty"`
}

// ChatRequestFromCompletion 将统一补全请求转换为 OpenAI 兼容请求。
// 系统提示为空时不注入 system 消息；RequireJSON 映射为
// response_format=json_object。
func ChatRequestFromCompletion(req *llm.CompletionRequest, model string, stream bool) OpenAICompatRequest {
	msgs := make([]OpenAICompatMessage, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, OpenAICompatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, OpenAICompatMessage{Role: "user", Content: req.UserPrompt})

	out := OpenAICompatRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if req.RequireJSON {
		out.ResponseFormat = &OpenAICompatResponseFormat{Type: "json_object"}
	}
	return out
}

// CompletionFromResponse 提取首个选项的文本并归一化用量。
// 第二个返回值为 false 表示 200 响应缺少任何补全内容。
func CompletionFromResponse(oa OpenAICompatResponse, provider string) (*llm.Completion, bool) {
	if len(oa.Choices) == 0 || oa.Choices[0].Message.Content == "" {
		return nil, false
	}
	out := &llm.Completion{
		Text:     oa.Choices[0].Message.Content,
		Model:    oa.Model,
		Provider: provider,
	}
	if oa.Usage != nil {
		out.Usage = llm.Usage{
			PromptTokens:     oa.Usage.PromptTokens,
			CompletionTokens: oa.Usage.CompletionTokens,
			TotalTokens:      oa.Usage.TotalTokens,
		}
	}
	return out, true
}

// BearerTokenHeaders 是标准的 Bearer token 认证 header 构建函数。
func BearerTokenHeaders(r *http.Request, apiKey string) {
	r.Header.Set("Authorization", "Bearer "+apiKey)
	r.Header.Set("Content-Type", "application/json")
}

// SafeCloseBody 关闭响应体，nil 安全，关闭错误直接丢弃
func SafeCloseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}

// ProbeEndpoint 对给定路径发起一次轻量 GET 探活，返回延迟与可用性。
func ProbeEndpoint(ctx context.Context, client *http.Client, baseURL, path, provider string, buildHeaders func(*http.Request)) (*llm.HealthStatus, error) {
	endpoint := strings.TrimRight(baseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	buildHeaders(httpReq)

	start := time.Now()
	resp, err := client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency, Err: err.Error()}, nil
	}
	defer SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := ReadErrorMessage(resp.Body, resp.StatusCode)
		return &llm.HealthStatus{Healthy: false, Latency: latency, Err: msg}, nil
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}
