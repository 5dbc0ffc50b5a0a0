// =============================================================================
// 🧪 SSE 测试服务器与流式收集辅助
// =============================================================================
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Axionautomation/momentum/llm"
)

// TestContext 返回带超时的测试上下文，Cleanup 时自动取消。
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NewSSEServer 启动一个按顺序写出原始 SSE 帧的测试服务器。
// 每帧写出后立即 Flush，模拟真实的分块推送。
func NewSSEServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// DataFrame 构造 data-only 方言的 SSE 帧。
func DataFrame(payload string) string {
	return fmt.Sprintf("data: %s\n\n", payload)
}

// EventFrame 构造 event/data 双行方言的 SSE 帧。
func EventFrame(event, payload string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)
}

// CollectChunks 排空流式通道并返回全部块。通道长时间不关闭视为测试失败。
func CollectChunks(t *testing.T, ch <-chan llm.StreamChunk) []llm.StreamChunk {
	t.Helper()
	var out []llm.StreamChunk
	timeout := time.After(10 * time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, chunk)
		case <-timeout:
			t.Fatal("stream did not close in time")
			return out
		}
	}
}

// CollectText 排空流式通道并拼接文本块，遇到错误块立即返回。
func CollectText(t *testing.T, ch <-chan llm.StreamChunk) (string, *llm.Error) {
	t.Helper()
	var text string
	for _, chunk := range CollectChunks(t, ch) {
		if chunk.Err != nil {
			return text, chunk.Err
		}
		text += chunk.Text
	}
	return text, nil
}
