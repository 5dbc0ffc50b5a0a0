package retry

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxRetries 是单个 Provider 的重试预算：
// 每次补全最多 1 + DefaultMaxRetries 次 HTTP 尝试。
const DefaultMaxRetries = 3

// Policy 定义单个 Provider 的 HTTP 重试策略。
// 遵循 KISS 原则：有界循环推进尝试计数，绝不递归。
type Policy struct {
	MaxRetries    int    // 最大重试次数（<=0 时取 DefaultMaxRetries）
	UseRetryAfter bool   // 429/5xx 时是否优先采用服务端 Retry-After
	Provider      string // 日志与指标用的 Provider 标识
	Logger        *zap.Logger
	OnRetry       func(attempt int, reason string, delay time.Duration) // 重试回调
	// Sleep 供测试注入；为空时使用监听 ctx 取消的默认等待。
	Sleep func(ctx context.Context, d time.Duration) error
}

// AttemptFunc 发起一次全新的 HTTP 尝试。重试时会被再次调用，
// 因此请求体必须每次重新构造。
type AttemptFunc func(ctx context.Context) (*http.Response, error)

// Do 以有界循环驱动 fn，直到成功、错误不可重试或预算耗尽：
//
//   - 允许列表内的瞬时网络故障（见 IsTransient）按 2^(attempt+1) 秒
//     指数退避后重试；其余网络错误原样返回。
//   - 429/5xx 响应按退避后重试：启用 UseRetryAfter 且头部为有效正数时
//     采用服务端给出的秒数，否则线性退避 (attempt+1)*2 秒。
//   - 其余状态（含 200）立即返回，由调用方解码。
//
// 预算耗尽时返回最后一个响应或网络错误，不做二次包装。
func Do(ctx context.Context, policy Policy, fn AttemptFunc) (*http.Response, error) {
	logger := policy.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := policy.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = waitCtx
	}

	for attempt := 0; ; attempt++ {
		resp, err := fn(ctx)
		if err != nil {
			// 调用方取消与名单外的错误立即失败。
			if ctx.Err() != nil || !IsTransient(err) || attempt >= maxRetries {
				return nil, err
			}
			delay := transientDelay(attempt)
			observeRetry(policy.Provider, reasonNetwork)
			logger.Warn("transient network error, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, reasonNetwork, delay)
			}
			if werr := sleep(ctx, delay); werr != nil {
				return nil, werr
			}
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= maxRetries {
			// 预算耗尽：最后一个响应交调用方映射为终态错误。
			return resp, nil
		}

		delay, source := statusDelay(policy, resp, attempt)
		reason := reasonUpstream
		if resp.StatusCode == http.StatusTooManyRequests {
			reason = reasonRateLimited
		}
		drain(resp)
		observeRetry(policy.Provider, reason)
		logger.Warn("retryable status, retrying",
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Duration("delay", delay),
			zap.String("delay_source", source),
		)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, reason, delay)
		}
		if werr := sleep(ctx, delay); werr != nil {
			return nil, werr
		}
	}
}

const (
	reasonNetwork     = "network"
	reasonRateLimited = "rate_limited"
	reasonUpstream    = "upstream_error"
)

// retryableStatus 报告该状态码是否进入退避重试（429 与全部 5xx）。
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// statusDelay 计算 429/5xx 的退避时长及其来源（retry-after / linear）。
func statusDelay(policy Policy, resp *http.Response, attempt int) (time.Duration, string) {
	if policy.UseRetryAfter {
		if d, ok := RetryAfter(resp); ok {
			return d, "retry-after"
		}
	}
	return time.Duration(attempt+1) * 2 * time.Second, "linear"
}

// transientDelay 计算瞬时网络故障的指数退避：2^(attempt+1) 秒。
func transientDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt+1)) * time.Second
}

// RetryAfter 解析数值形式的 Retry-After 头，单位为秒，仅接受正数。
// HTTP 日期形式不在各家上游的实际行为内，按无效处理。
func RetryAfter(resp *http.Response) (time.Duration, bool) {
	raw := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// drain 在重试前吃掉并关闭响应体，保证底层连接可以复用。
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// waitCtx 等待 d，期间监听 ctx 取消。
func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
