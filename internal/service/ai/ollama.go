package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaOptions tunes a local model call.
type OllamaOptions struct {
	Temperature   float32
	MaxTokens     int
	ContextWindow int
}

func (o OllamaOptions) toMap() map[string]any {
	opts := map[string]any{"temperature": o.Temperature}
	if o.MaxTokens > 0 {
		opts["num_predict"] = o.MaxTokens
	}
	if o.ContextWindow > 0 {
		opts["num_ctx"] = o.ContextWindow
	}
	return opts
}

// OllamaProvider runs completions against a local Ollama server.
type OllamaProvider struct {
	client  *api.Client
	model   string
	options OllamaOptions
}

// NewOllamaProvider creates a provider for model on client.
func NewOllamaProvider(client *api.Client, model string, options OllamaOptions) *OllamaProvider {
	return &OllamaProvider{client: client, model: model, options: options}
}

func (p *OllamaProvider) Name() string {
	return "ollama:" + p.model
}

func (p *OllamaProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: make([]api.Message, 0, len(messages)),
		Stream:   &stream,
		Options:  p.options.toMap(),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, api.Message{Role: msg.Role, Content: msg.Content})
	}

	var content strings.Builder
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", p.wrapError(err)
	}

	out := strings.TrimSpace(content.String())
	if out == "" {
		return "", fmt.Errorf("%s: %w", p.Name(), ErrEmptyCompletion)
	}
	return out, nil
}

func (p *OllamaProvider) wrapError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%s: %w", p.Name(), ErrCompletionTimeout)
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{Provider: p.Name(), StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage, Err: err}
	}
	return err
}
