package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteErrorMessage(t *testing.T) {
	routeErr := &RouteError{Errs: []error{
		attemptError(TierStandard, "openai", errors.New("boom")),
		attemptError(TierFast, "groq", errors.New("rate limited")),
		attemptError(TierPremium, "anthropic", errors.New("overloaded")),
	}}

	assert.Equal(t,
		"all providers failed: standard/openai: boom; fast/groq: rate limited; premium/anthropic: overloaded",
		routeErr.Error())
}

func TestRouteErrorUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel failure")
	structured := &Error{Code: ErrRateLimited, Message: "too many requests", HTTPStatus: 429, Retryable: true}

	routeErr := &RouteError{Errs: []error{
		attemptError(TierFast, "groq", structured),
		attemptError(TierStandard, "openai", sentinel),
	}}

	t.Run("errors.Is finds wrapped sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(routeErr, sentinel))
	})

	t.Run("errors.As finds structured error", func(t *testing.T) {
		var le *Error
		require.True(t, errors.As(routeErr, &le))
		assert.Equal(t, ErrRateLimited, le.Code)
	})

	t.Run("unrelated error not found", func(t *testing.T) {
		assert.False(t, errors.Is(routeErr, errors.New("sentinel failure")))
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "retryable structured error",
			err:  &Error{Code: ErrUpstreamError, Retryable: true},
			want: true,
		},
		{
			name: "non-retryable structured error",
			err:  &Error{Code: ErrAPIError, Retryable: false},
			want: false,
		},
		{
			name: "wrapped retryable error",
			err:  fmt.Errorf("attempt 2: %w", &Error{Code: ErrNetwork, Retryable: true}),
			want: true,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestAsError(t *testing.T) {
	t.Run("extracts from wrap chain", func(t *testing.T) {
		inner := &Error{Code: ErrDecode, Message: "bad json", HTTPStatus: 200}
		wrapped := attemptError(TierPremium, "anthropic", inner)

		got, ok := AsError(wrapped)
		require.True(t, ok)
		assert.Same(t, inner, got)
	})

	t.Run("plain error yields nothing", func(t *testing.T) {
		got, ok := AsError(errors.New("boom"))
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}

func TestErrorImplementsError(t *testing.T) {
	err := &Error{Code: ErrRateLimited, Message: "slow down"}
	assert.Equal(t, "slow down", err.Error())
}
