// =============================================================================
// Momentum OpenAI-Compatible Provider Base
// =============================================================================
// Shared implementation for the bearer-token vendors speaking the OpenAI
// chat schema (Groq, OpenAI). Vendor packages embed this and only supply
// what differs: name, tier, endpoints, default model, retry-after handling
// and, where the vendor offers one, the SSE stream entry point.
// =============================================================================

package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Axionautomation/momentum/llm"
	"github.com/Axionautomation/momentum/llm/providers"
	"github.com/Axionautomation/momentum/llm/retry"
	"github.com/Axionautomation/momentum/llm/sse"
)

// Config holds the vendor-specific constants a wrapping package supplies.
type Config struct {
	// ProviderName is the unique identifier for this vendor (e.g. "groq").
	ProviderName string

	// Tier is the cost tier this vendor is built for.
	Tier llm.CostTier

	// Streaming declares whether the wrapping vendor adds a Stream method.
	// It must agree with the methods the wrapper actually has.
	Streaming bool

	// EndpointPath is the chat completions path. Defaults to "/chat/completions".
	EndpointPath string

	// ModelsEndpoint is the models list path, used by health checks.
	// Defaults to "/models".
	ModelsEndpoint string

	// UseRetryAfter makes 429/5xx backoff honor the server's Retry-After
	// header when it parses as a positive number of seconds. Vendors that
	// leave this false always use the linear fallback delay.
	UseRetryAfter bool
}

// Provider is the base implementation for the OpenAI-compatible vendors.
type Provider struct {
	cfg    Config
	opts   providers.Options
	base   *url.URL
	client *http.Client // per-attempt timeout applied
	stream *http.Client // no overall timeout; ctx bounds the stream
	logger *zap.Logger
}

var _ llm.Provider = (*Provider)(nil)

// New creates the base provider. The endpoint is validated here so a bad
// base URL fails at construction, not on the first request.
func New(cfg Config, opts providers.Options, defaultBaseURL, defaultModel string) (*Provider, error) {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/chat/completions"
	}
	if cfg.ModelsEndpoint == "" {
		cfg.ModelsEndpoint = "/models"
	}

	base, err := opts.Normalize(defaultBaseURL, defaultModel, cfg.ProviderName)
	if err != nil {
		return nil, err
	}

	// Completions bound each attempt end to end; streams must stay open,
	// so the timeout lives on a shallow copy sharing the transport.
	completion := *opts.HTTPClient
	completion.Timeout = opts.Timeout

	return &Provider{
		cfg:    cfg,
		opts:   opts,
		base:   base,
		client: &completion,
		stream: opts.HTTPClient,
		logger: opts.Logger.With(zap.String("provider", cfg.ProviderName)),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.cfg.ProviderName }

// Model returns the configured model identifier.
func (p *Provider) Model() string { return p.opts.Model }

// Capabilities returns the immutable capability record.
func (p *Provider) Capabilities() llm.Capabilities {
	return llm.Capabilities{
		Name:      p.cfg.ProviderName,
		Tier:      p.cfg.Tier,
		Streaming: p.cfg.Streaming,
	}
}

// endpoint builds the full URL for a given path.
func (p *Provider) endpoint(path string) string {
	return p.base.String() + path
}

func (p *Provider) buildHeaders(req *http.Request) {
	providers.BearerTokenHeaders(req, p.opts.APIKey)
}

func (p *Provider) policy() retry.Policy {
	return retry.Policy{
		MaxRetries:    p.opts.MaxRetries,
		UseRetryAfter: p.cfg.UseRetryAfter,
		Provider:      p.cfg.ProviderName,
		Logger:        p.logger,
	}
}

// Complete performs a non-streaming chat completion, driving transient
// faults and 429/5xx responses through the bounded retry engine.
func (p *Provider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	body := providers.ChatRequestFromCompletion(req, p.opts.Model, false)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := p.endpoint(p.cfg.EndpointPath)
	resp, err := retry.Do(ctx, p.policy(), func(ctx context.Context) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		p.buildHeaders(httpReq)
		return p.client.Do(httpReq)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providers.NetworkError(p.cfg.ProviderName, err)
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body, resp.StatusCode)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.cfg.ProviderName)
	}

	var oaResp providers.OpenAICompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaResp); err != nil {
		return nil, &llm.Error{
			Code:       llm.ErrDecode,
			Message:    err.Error(),
			HTTPStatus: resp.StatusCode,
			Provider:   p.cfg.ProviderName,
		}
	}

	out, ok := providers.CompletionFromResponse(oaResp, p.cfg.ProviderName)
	if !ok {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidResponse,
			Message:    "response contained no completion content",
			HTTPStatus: resp.StatusCode,
			Provider:   p.cfg.ProviderName,
		}
	}
	return out, nil
}

// HealthCheck verifies the vendor is reachable via its models endpoint.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return providers.ProbeEndpoint(ctx, p.client, p.base.String(), p.cfg.ModelsEndpoint,
		p.cfg.ProviderName, p.buildHeaders)
}

// OpenStream issues the streaming POST and hands the body to the dialect-A
// reader. Stream starts are single attempts: a request that has begun
// streaming cannot be transparently replayed.
func (p *Provider) OpenStream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	body := providers.ChatRequestFromCompletion(req, p.opts.Model, true)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.endpoint(p.cfg.EndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.stream.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providers.NetworkError(p.cfg.ProviderName, err)
	}
	if resp.StatusCode >= 400 {
		defer providers.SafeCloseBody(resp.Body)
		msg := providers.ReadErrorMessage(resp.Body, resp.StatusCode)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.cfg.ProviderName)
	}

	return StreamSSE(ctx, resp.Body, p.cfg.ProviderName), nil
}

// StreamSSE reads the data-only SSE dialect: every event is a data: line,
// a literal [DONE] payload ends the stream and is never forwarded, and a
// payload that fails to decode is skipped without ending the stream. EOF
// before [DONE] still finishes cleanly.
func StreamSSE(ctx context.Context, body io.ReadCloser, providerName string) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk)
	go func() {
		defer body.Close()
		defer close(ch)

		dec := sse.NewDecoder(body)
		for {
			ev, err := dec.Next()
			if err != nil {
				if err != io.EOF {
					select {
					case <-ctx.Done():
					case ch <- llm.StreamChunk{Err: providers.NetworkError(providerName, err)}:
					}
					return
				}
				select {
				case <-ctx.Done():
				case ch <- llm.StreamChunk{Done: true}:
				}
				return
			}

			payload := bytes.TrimSpace(ev.Data)
			if bytes.Equal(payload, doneSentinel) {
				select {
				case <-ctx.Done():
				case ch <- llm.StreamChunk{Done: true}:
				}
				return
			}

			var oaResp providers.OpenAICompatResponse
			if err := json.Unmarshal(payload, &oaResp); err != nil {
				// Malformed frames are dropped; the stream keeps going.
				continue
			}
			if len(oaResp.Choices) == 0 || oaResp.Choices[0].Delta == nil {
				continue
			}
			text := oaResp.Choices[0].Delta.Content
			if text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case ch <- llm.StreamChunk{Text: text}:
			}
		}
	}()
	return ch
}

var doneSentinel = []byte("[DONE]")
