package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Axionautomation/momentum/llm"

// Metrics 路由指标收集器。所有方法对 nil 接收者安全，
// 未注入收集器的路由实例可以无条件调用。
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter
	// 计数器
	requestTotal  metric.Int64Counter
	errorTotal    metric.Int64Counter
	fallbackTotal metric.Int64Counter
	// 直方图
	routeDuration metric.Float64Histogram
	tokenCount    metric.Int64Histogram
	// 活跃请求
	activeRequests metric.Int64UpDownCounter
}

// NewMetrics 注册路由用到的全部仪表。
// 进程没装 SDK 时 otel 全局返回 noop 实现，注册不会失败。
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	var err error

	// 路由请求总量
	m.requestTotal, err = m.meter.Int64Counter("llm.request.total",
		metric.WithDescription("Total number of routed completion requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	// 路由失败总量
	m.errorTotal, err = m.meter.Int64Counter("llm.error.total",
		metric.WithDescription("Total number of routing errors"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	// 降级跳数
	m.fallbackTotal, err = m.meter.Int64Counter("llm.fallback.total",
		metric.WithDescription("Fallback hops taken during routing"),
		metric.WithUnit("{fallback}"))
	if err != nil {
		return nil, err
	}

	// 端到端路由耗时
	m.routeDuration, err = m.meter.Float64Histogram("llm.route.duration",
		metric.WithDescription("End-to-end route duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		return nil, err
	}

	// 每次请求的 token 量
	m.tokenCount, err = m.meter.Int64Histogram("llm.token.count",
		metric.WithDescription("Prompt plus completion tokens per routed request"),
		metric.WithUnit("{token}"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 2000, 4000, 8000, 16000, 32000))
	if err != nil {
		return nil, err
	}

	// 在途请求
	m.activeRequests, err = m.meter.Int64UpDownCounter("llm.request.active",
		metric.WithDescription("Requests currently in flight"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RouteAttrs 路由开始时已知的属性
type RouteAttrs struct {
	RequestID string
	Preferred string
}

// RouteResult 路由结束时的结果属性
type RouteResult struct {
	Status           string // success / exhausted / no_providers
	Tier             string
	Provider         string
	Fallbacks        int
	Duration         time.Duration
	TokensPrompt     int
	TokensCompletion int
}

// StartRoute 开始一次路由追踪
func (m *Metrics) StartRoute(ctx context.Context, attrs RouteAttrs) (context.Context, trace.Span) {
	if m == nil {
		return ctx, nil
	}
	ctx, span := m.tracer.Start(ctx, "llm.route",
		trace.WithAttributes(
			attribute.String("llm.request_id", attrs.RequestID),
			attribute.String("llm.tier.preferred", attrs.Preferred),
		))

	m.activeRequests.Add(ctx, 1)

	return ctx, span
}

// EndRoute 结束路由追踪并记录指标
func (m *Metrics) EndRoute(ctx context.Context, span trace.Span, res RouteResult) {
	if m == nil {
		return
	}
	if span != nil {
		defer span.End()
	}

	commonAttrs := []attribute.KeyValue{
		attribute.String("status", res.Status),
		attribute.String("tier", res.Tier),
		attribute.String("provider", res.Provider),
	}

	// 减少活跃请求
	m.activeRequests.Add(ctx, -1)

	// 记录请求
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(commonAttrs...))

	// 记录延迟
	m.routeDuration.Record(ctx, res.Duration.Seconds(), metric.WithAttributes(commonAttrs...))

	// 记录 Token
	totalTokens := int64(res.TokensPrompt + res.TokensCompletion)
	if totalTokens > 0 {
		m.tokenCount.Record(ctx, totalTokens, metric.WithAttributes(commonAttrs...))
	}

	// 记录错误
	if res.Status != "success" {
		m.errorTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", res.Status)))
	}

	// Span 属性
	if span != nil {
		span.SetAttributes(
			attribute.String("llm.status", res.Status),
			attribute.String("llm.tier", res.Tier),
			attribute.String("llm.provider", res.Provider),
			attribute.Int("llm.fallbacks", res.Fallbacks),
			attribute.Int("llm.tokens.prompt", res.TokensPrompt),
			attribute.Int("llm.tokens.completion", res.TokensCompletion),
			attribute.Float64("llm.duration_ms", float64(res.Duration.Milliseconds())))
	}
}

// AddFallback 记录一次降级事件
func (m *Metrics) AddFallback(ctx context.Context, tier, provider string) {
	if m == nil {
		return
	}
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("provider", provider)))
}
