// =============================================================================
// 🧪 Mock Provider
// =============================================================================
// llm.Provider 的可编排模拟实现，支持固定响应、错误注入、
// 失败次数控制与调用记录。
//
// 使用方法:
//
//	p := testutil.NewMockProvider("mock", llm.TierFast).WithResponse("hello")
//	p := testutil.NewMockProvider("mock", llm.TierFast).WithFailFirst(2)
// =============================================================================
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Axionautomation/momentum/llm"
)

// MockProvider 是 llm.Provider 的模拟实现。
// 它没有 Stream 方法；流式场景使用 MockStreamingProvider。
type MockProvider struct {
	mu sync.Mutex

	name      string
	tier      llm.CostTier
	streaming bool // 能力声明，与是否真有 Stream 方法无关

	// 响应配置
	response string
	model    string
	usage    llm.Usage
	err      error

	// 行为控制
	failFirst    int // 前 N 次调用返回错误
	delay        time.Duration
	completeFunc func(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error)

	// 健康检查配置
	health    *llm.HealthStatus
	healthErr error

	// 调用记录
	calls    int
	requests []*llm.CompletionRequest
}

var _ llm.Provider = (*MockProvider)(nil)

// NewMockProvider 创建新的 MockProvider。
func NewMockProvider(name string, tier llm.CostTier) *MockProvider {
	return &MockProvider{
		name:     name,
		tier:     tier,
		response: "mock response",
		model:    "mock-model",
		usage:    llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		health:   &llm.HealthStatus{Healthy: true, Latency: time.Millisecond},
	}
}

// WithResponse 设置固定响应文本。
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = text
	return m
}

// WithModel 设置响应携带的模型名。
func (m *MockProvider) WithModel(model string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
	return m
}

// WithUsage 设置响应携带的用量。
func (m *MockProvider) WithUsage(u llm.Usage) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = u
	return m
}

// WithError 使 Complete 始终返回给定错误。
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailFirst 使前 N 次 Complete 调用失败，之后成功。
func (m *MockProvider) WithFailFirst(n int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFirst = n
	return m
}

// WithDelay 为每次 Complete 调用加入固定延迟。
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithCompleteFunc 完全接管 Complete 行为。
func (m *MockProvider) WithCompleteFunc(fn func(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// WithStreamingCapability 控制 Capabilities().Streaming 的声明值。
func (m *MockProvider) WithStreamingCapability(ok bool) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaming = ok
	return m
}

// WithHealth 设置 HealthCheck 的返回值。
func (m *MockProvider) WithHealth(st *llm.HealthStatus, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = st
	m.healthErr = err
	return m
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Capabilities() llm.Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return llm.Capabilities{Name: m.name, Tier: m.tier, Streaming: m.streaming}
}

// Complete 按配置返回响应或错误，并记录调用。
func (m *MockProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.requests = append(m.requests, req)
	fn := m.completeFunc
	delay := m.delay
	failFirst := m.failFirst
	err := m.err
	res := &llm.Completion{
		Text:     m.response,
		Model:    m.model,
		Provider: m.name,
		Usage:    m.usage,
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if call <= failFirst {
		return nil, &llm.Error{
			Code:      llm.ErrUpstreamError,
			Message:   "mock transient failure",
			Retryable: true,
			Provider:  m.name,
		}
	}
	return res, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health, m.healthErr
}

// Calls 返回 Complete 的调用次数。
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests 返回记录的请求列表副本。
func (m *MockProvider) Requests() []*llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockStreamingProvider 在 MockProvider 之上增加 Stream 方法。
type MockStreamingProvider struct {
	*MockProvider

	chunks    []llm.StreamChunk
	streamErr error
}

var _ llm.StreamingProvider = (*MockStreamingProvider)(nil)

// NewMockStreamingProvider 创建流式模拟 Provider，能力声明默认为可流式。
func NewMockStreamingProvider(name string, tier llm.CostTier) *MockStreamingProvider {
	base := NewMockProvider(name, tier).WithStreamingCapability(true)
	return &MockStreamingProvider{MockProvider: base}
}

// WithChunks 设置 Stream 发送的块序列。
func (m *MockStreamingProvider) WithChunks(chunks ...llm.StreamChunk) *MockStreamingProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
	return m
}

// WithStreamError 使 Stream 的建立直接失败。
func (m *MockStreamingProvider) WithStreamError(err error) *MockStreamingProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
	return m
}

// Stream 依次发送配置的块并关闭通道。
func (m *MockStreamingProvider) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	m.mu.Lock()
	chunks := m.chunks
	streamErr := m.streamErr
	m.mu.Unlock()

	if streamErr != nil {
		return nil, streamErr
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
	}()
	return ch, nil
}
