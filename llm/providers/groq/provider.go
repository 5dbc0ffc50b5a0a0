// Package groq implements the fast-tier vendor client. Groq speaks the
// OpenAI chat schema over bearer-token auth and serves small models with
// very low latency, which is what the fast tier is for.
package groq

import (
	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/llm/providers/openaicompat"
)

const (
	// ProviderName identifies this vendor in logs, metrics and errors.
	ProviderName = "groq"

	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.1-8b-instant"
)

// Client is the Groq vendor client. It has no streaming endpoint wired up,
// so the router never hands it to stream consumers.
type Client struct {
	*openaicompat.Provider
}

var _ llm.Provider = (*Client)(nil)

// New creates a Groq client. Groq publishes precise Retry-After values on
// 429 responses, so its backoff honors the header before falling back to
// the linear delay.
func New(opts providers.Options) (*Client, error) {
	base, err := openaicompat.New(openaicompat.Config{
		ProviderName:  ProviderName,
		Tier:          llm.TierFast,
		UseRetryAfter: true,
	}, opts, defaultBaseURL, defaultModel)
	if err != nil {
		return nil, err
	}
	return &Client{Provider: base}, nil
}
