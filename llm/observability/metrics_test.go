package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	// 未安装 SDK 时使用全局 no-op provider，全部调用都应是安全的。
	ctx, span := m.StartRoute(context.Background(), RouteAttrs{
		RequestID: "req-1",
		Preferred: "standard",
	})
	require.NotNil(t, ctx)

	m.AddFallback(ctx, "standard", "openai")
	m.EndRoute(ctx, span, RouteResult{
		Status:           "success",
		Tier:             "fast",
		Provider:         "groq",
		Fallbacks:        1,
		Duration:         120 * time.Millisecond,
		TokensPrompt:     12,
		TokensCompletion: 30,
	})
}

// 未注入收集器的路由持有 nil *Metrics，每个方法都必须可调用。
func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		ctx, span := m.StartRoute(context.Background(), RouteAttrs{RequestID: "req-1"})
		m.AddFallback(ctx, "fast", "groq")
		m.EndRoute(ctx, span, RouteResult{Status: "exhausted"})
	})
}

func TestEndRouteWithoutSpan(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.EndRoute(context.Background(), nil, RouteResult{
			Status:   "no_providers",
			Duration: time.Millisecond,
		})
	})
}
