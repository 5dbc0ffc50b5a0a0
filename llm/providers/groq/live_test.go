package groq

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
)

// 真实端点冒烟测试，仅在设置了 GROQ_API_KEY 时运行。

func TestLiveComplete(t *testing.T) {
	key := os.Getenv("GROQ_API_KEY")
	if key == "" {
		t.Skip("GROQ_API_KEY not set")
	}

	c, err := New(providers.Options{APIKey: key})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := c.Complete(ctx, &llm.CompletionRequest{
		UserPrompt:  "Reply with the single word: pong",
		MaxTokens:   10,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
	assert.Equal(t, c.Name(), resp.Provider)
	assert.Positive(t, resp.Usage.TotalTokens)
}

func TestLiveHealthCheck(t *testing.T) {
	key := os.Getenv("GROQ_API_KEY")
	if key == "" {
		t.Skip("GROQ_API_KEY not set")
	}

	c, err := New(providers.Options{APIKey: key})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, st.Healthy)
	assert.Positive(t, st.Latency)
}
