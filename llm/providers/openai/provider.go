// Package openai implements the standard-tier vendor client over the
// OpenAI chat completions API, including the data-only SSE stream dialect.
package openai

import (
	"context"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/llm/providers/openaicompat"
)

const (
	// ProviderName identifies this vendor in logs, metrics and errors.
	ProviderName = "openai"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Client is the OpenAI vendor client serving the standard tier.
type Client struct {
	*openaicompat.Provider
}

var (
	_ llm.Provider          = (*Client)(nil)
	_ llm.StreamingProvider = (*Client)(nil)
)

// New creates an OpenAI client. OpenAI's Retry-After values are not
// reliable for chat completions, so backoff always uses the linear delay.
func New(opts providers.Options) (*Client, error) {
	base, err := openaicompat.New(openaicompat.Config{
		ProviderName: ProviderName,
		Tier:         llm.TierStandard,
		Streaming:    true,
	}, opts, defaultBaseURL, defaultModel)
	if err != nil {
		return nil, err
	}
	return &Client{Provider: base}, nil
}

// Stream starts a streaming completion over the data-only SSE dialect.
func (c *Client) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	return c.OpenStream(ctx, req)
}
