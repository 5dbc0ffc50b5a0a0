package groq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
)

func TestNewDefaults(t *testing.T) {
	c, err := New(providers.Options{APIKey: "gsk-test"})
	require.NoError(t, err)

	caps := c.Capabilities()
	assert.Equal(t, "groq", caps.Name)
	assert.Equal(t, llm.TierFast, caps.Tier)
	assert.False(t, caps.Streaming, "groq has no stream endpoint wired up")
	assert.Equal(t, "llama-3.1-8b-instant", c.Model())
}

func TestClientIsNotAStreamingProvider(t *testing.T) {
	c, err := New(providers.Options{APIKey: "gsk-test"})
	require.NoError(t, err)

	var p llm.Provider = c
	_, ok := p.(llm.StreamingProvider)
	assert.False(t, ok, "the router must never select groq for streaming")
}

func TestCompleteAgainstMockServer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"model": "llama-3.1-8b-instant",
			"choices": [{"message": {"role": "assistant", "content": "fast answer"}}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 2, "total_tokens": 6}
		}`))
	}))
	defer srv.Close()

	c, err := New(providers.Options{APIKey: "gsk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	res, err := c.Complete(context.Background(), &llm.CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "fast answer", res.Text)
	assert.Equal(t, "groq", res.Provider)
	assert.Equal(t, "Bearer gsk-test", gotAuth)
}

func TestRetryAfterHeaderShapesBackoff(t *testing.T) {
	var calls int32
	start := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0.2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	c, err := New(providers.Options{APIKey: "gsk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	res, err := c.Complete(context.Background(), &llm.CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// Had the header been ignored, the linear fallback would have slept a
	// full 2 seconds before the second attempt.
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}
