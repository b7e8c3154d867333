package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrCompletionTimeout marks a completion that exceeded its deadline.
	ErrCompletionTimeout = errors.New("completion timed out")
	// ErrProviderUnavailable is returned for providers without a configured backend.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrEmptyCompletion is returned when a provider answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces one completion for an ordered message list.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// APIError is a structured failure reported by a provider's API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Classify maps a provider error onto timeout, API error or unexpected failure.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCompletionTimeout) || errors.Is(err, ErrProviderUnavailable) {
		return err
	}
	if isTimeout(err) {
		return fmt.Errorf("%s: %w", provider, ErrCompletionTimeout)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return fmt.Errorf("%s: unexpected error: %w", provider, err)
}

// IsTimeout reports whether err was classified as a completion timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrCompletionTimeout)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds every Complete call of p by d. A zero d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 || p == nil {
		return p
	}
	return &timeoutProvider{inner: p, timeout: d}
}

func (p *timeoutProvider) Name() string {
	return p.inner.Name()
}

func (p *timeoutProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.inner.Complete(ctx, messages)
	if err != nil {
		return "", Classify(p.inner.Name(), err)
	}
	return out, nil
}
