package anthropic

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/testutil"
)

// 真实端点冒烟测试，仅在设置了 ANTHROPIC_API_KEY 时运行。

func TestLiveComplete(t *testing.T) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
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
	// input_tokens/output_tokens 应已归一化进 Usage
	assert.Positive(t, resp.Usage.PromptTokens)
}

func TestLiveStream(t *testing.T) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	c, err := New(providers.Options{APIKey: key})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ch, err := c.Stream(ctx, &llm.CompletionRequest{
		UserPrompt:  "Count from 1 to 5, digits only.",
		MaxTokens:   30,
		Temperature: 0.1,
	})
	require.NoError(t, err)

	text, streamErr := testutil.CollectText(t, ch)
	assert.Nil(t, streamErr)
	assert.NotEmpty(t, text)
}
