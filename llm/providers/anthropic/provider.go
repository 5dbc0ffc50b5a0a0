// Package anthropic 实现 Anthropic Claude 的 Provider（premium 档位）。
//
// Claude API 与 OpenAI 兼容协议有显著差异：
//  1. 认证使用 x-api-key 请求头而非 Bearer Token，且必须携带 anthropic-version
//  2. system 提示词是顶层字段，不作为消息传递
//  3. max_tokens 是必填字段
//  4. 响应正文是 content 块数组，而非 choices
//  5. 流式响应使用 event/data 双行 SSE，事件名驱动解析
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/llm/retry"
	"github.com/Axionautomation/momentum/llm/sse"
)

// ProviderName 是注册与日志中使用的厂商标识。
const ProviderName = "anthropic"

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-sonnet-20241022"

	apiVersion   = "2023-06-01"
	messagesPath = "/v1/messages"
	modelsPath   = "/v1/models"

	// Claude 要求必须提供 max_tokens
	defaultMaxTokens = 4096
)

// jsonInstruction 在 RequireJSON 时追加到 system 文本。
// Claude 没有 response_format 参数，只能通过提示词约束输出。
const jsonInstruction = "Respond with a single valid JSON object and no other text."

// Client 是 Anthropic Claude 客户端。
type Client struct {
	opts   providers.Options
	base   *url.URL
	client *http.Client // 单次请求超时
	stream *http.Client // 流式请求无整体超时，由 ctx 控制生命周期
	logger *zap.Logger
}

var (
	_ llm.Provider          = (*Client)(nil)
	_ llm.StreamingProvider = (*Client)(nil)
)

// New 创建 Claude 客户端，端点在构造时校验。
func New(opts providers.Options) (*Client, error) {
	base, err := opts.Normalize(defaultBaseURL, defaultModel, ProviderName)
	if err != nil {
		return nil, err
	}

	completion := *opts.HTTPClient
	completion.Timeout = opts.Timeout

	return &Client{
		opts:   opts,
		base:   base,
		client: &completion,
		stream: opts.HTTPClient,
		logger: opts.Logger.With(zap.String("provider", ProviderName)),
	}, nil
}

func (c *Client) Name() string { return ProviderName }

// Model 返回配置的模型标识。
func (c *Client) Model() string { return c.opts.Model }

func (c *Client) Capabilities() llm.Capabilities {
	return llm.Capabilities{
		Name:      ProviderName,
		Tier:      llm.TierPremium,
		Streaming: true,
	}
}

// ---- 请求/响应 wire 结构 ----

// Claude 的消息内容是块数组，文本块为 {type: "text", text: ...}。
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"` // user 或 assistant
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"` // system 提示词单独传递
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      *claudeUsage    `json:"usage,omitempty"`
}

// 流式事件的 data 载荷。事件类型由 SSE 的 event 行给出，
// 载荷里的 type 字段与其一致，解析以 event 行为准。
type claudeStreamEvent struct {
	Type  string       `json:"type"`
	Index int          `json:"index,omitempty"`
	Delta *claudeDelta `json:"delta,omitempty"`
}

type claudeDelta struct {
	Type       string `json:"type"` // text_delta, input_json_delta
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

func (c *Client) buildHeaders(req *http.Request) {
	// Claude 使用 x-api-key 认证
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
}

// buildRequest 将统一请求转换为 Claude wire 格式。
func (c *Client) buildRequest(req *llm.CompletionRequest, stream bool) claudeRequest {
	system := req.SystemPrompt
	if req.RequireJSON {
		if system != "" {
			system += "\n\n" + jsonInstruction
		} else {
			system = jsonInstruction
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return claudeRequest{
		Model:  c.opts.Model,
		System: system,
		Messages: []claudeMessage{{
			Role:    "user",
			Content: []claudeContent{{Type: "text", Text: req.UserPrompt}},
		}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

func (c *Client) policy() retry.Policy {
	// Claude 不依赖 Retry-After，统一使用线性退避
	return retry.Policy{
		MaxRetries: c.opts.MaxRetries,
		Provider:   ProviderName,
		Logger:     c.logger,
	}
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// Complete 执行一次非流式补全，瞬时故障与 429/5xx 经有界重试引擎处理。
func (c *Client) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	payload, err := json.Marshal(c.buildRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.endpoint(messagesPath)
	resp, err := retry.Do(ctx, c.policy(), func(ctx context.Context) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		c.buildHeaders(httpReq)
		return c.client.Do(httpReq)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providers.NetworkError(ProviderName, err)
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body, resp.StatusCode)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, ProviderName)
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &llm.Error{
			Code:       llm.ErrDecode,
			Message:    err.Error(),
			HTTPStatus: resp.StatusCode,
			Provider:   ProviderName,
		}
	}

	out, ok := completionFromResponse(cr)
	if !ok {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidResponse,
			Message:    "response contained no text content block",
			HTTPStatus: resp.StatusCode,
			Provider:   ProviderName,
		}
	}
	return out, nil
}

// completionFromResponse 取 content 数组中第一个文本块作为补全文本。
func completionFromResponse(cr claudeResponse) (*llm.Completion, bool) {
	var text string
	for _, block := range cr.Content {
		if block.Type == "text" && block.Text != "" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, false
	}

	out := &llm.Completion{
		Text:     text,
		Model:    cr.Model,
		Provider: ProviderName,
	}
	if cr.Usage != nil {
		out.Usage = llm.Usage{
			PromptTokens:     cr.Usage.InputTokens,
			CompletionTokens: cr.Usage.OutputTokens,
			TotalTokens:      cr.Usage.InputTokens + cr.Usage.OutputTokens,
		}
	}
	return out, true
}

// HealthCheck 通过模型列表端点探活。
func (c *Client) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return providers.ProbeEndpoint(ctx, c.client, c.base.String(), modelsPath, ProviderName, c.buildHeaders)
}

// Stream 发起流式补全。流的建立是单次尝试，不走重试：
// 已经开始输出的流无法透明重放。
func (c *Client) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	payload, err := json.Marshal(c.buildRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(messagesPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.buildHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providers.NetworkError(ProviderName, err)
	}
	if resp.StatusCode >= 400 {
		defer providers.SafeCloseBody(resp.Body)
		msg := providers.ReadErrorMessage(resp.Body, resp.StatusCode)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, ProviderName)
	}

	return c.streamEvents(ctx, resp.Body), nil
}

// streamEvents 解析 Claude 的 event/data 双行 SSE：
//   - content_block_delta 携带增量文本
//   - message_stop 表示正常结束
//   - error 事件终止流并映射为终态错误
//   - 其余事件（message_start、ping、content_block_stop 等）忽略
//   - 未见 message_stop 的 EOF 视为软结束
func (c *Client) streamEvents(ctx context.Context, body io.ReadCloser) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk)
	go func() {
		defer body.Close()
		defer close(ch)

		dec := sse.NewDecoder(body)
		for {
			ev, err := dec.Next()
			if err != nil {
				if err != io.EOF {
					select {
					case <-ctx.Done():
					case ch <- llm.StreamChunk{Err: providers.NetworkError(ProviderName, err)}:
					}
					return
				}
				select {
				case <-ctx.Done():
				case ch <- llm.StreamChunk{Done: true}:
				}
				return
			}

			switch ev.Name {
			case "message_stop":
				select {
				case <-ctx.Done():
				case ch <- llm.StreamChunk{Done: true}:
				}
				return

			case "error":
				select {
				case <-ctx.Done():
				case ch <- llm.StreamChunk{Err: &llm.Error{
					Code:     llm.ErrStreamFailed,
					Message:  streamErrorMessage(ev.Data),
					Provider: ProviderName,
				}}:
				}
				return

			case "content_block_delta":
				var event claudeStreamEvent
				if err := json.Unmarshal(ev.Data, &event); err != nil {
					// 损坏的增量帧丢弃，流继续
					continue
				}
				if event.Delta == nil || event.Delta.Type != "text_delta" || event.Delta.Text == "" {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case ch <- llm.StreamChunk{Text: event.Delta.Text}:
				}
			}
		}
	}()
	return ch
}

// streamErrorMessage 从 error 事件载荷中提取可读信息，解析失败时回退为原文。
func streamErrorMessage(data []byte) string {
	var body struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		if body.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", body.Error.Message, body.Error.Type)
		}
		return body.Error.Message
	}
	return string(bytes.TrimSpace(data))
}
