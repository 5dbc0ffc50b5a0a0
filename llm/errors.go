package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProviders is returned by the router when the fallback chain finished
// without a single attempt: every tier in the chain was unregistered.
var ErrNoProviders = errors.New("no providers available")

// RouteError reports an exhausted fallback chain: every registered provider
// in the chain was attempted and failed. Errs holds one wrapped error per
// attempt, in chain order.
type RouteError struct {
	Errs []error
}

func (e *RouteError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-provider errors to errors.Is / errors.As.
func (e *RouteError) Unwrap() []error { return e.Errs }

// IsRetryable reports whether err carries a retryable *Error.
func IsRetryable(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Retryable
}

// AsError extracts the structured *Error from err's chain, if any.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// attemptError ties a provider failure to the tier it was tried under.
func attemptError(tier CostTier, provider string, err error) error {
	return fmt.Errorf("%s/%s: %w", tier, provider, err)
}
