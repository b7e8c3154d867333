package ai

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ollama/ollama/api"

	"github.com/augustine-bot/augustine/backend/internal/config"
)

// Providers groups the completion backends used by the HTTP surface.
type Providers struct {
	// Chat serves /chat and the websocket channel.
	Chat *Router
	// Ask serves stateless /ask questions on the local model.
	Ask Provider
	// Tweet generates short social content on the local model.
	Tweet Provider
	// Ollama is shared with the retrieval embedder.
	Ollama *api.Client
}

// NewProvidersFromConfig registers every backend that has credentials.
// Missing credentials leave a kind unbound; calls to it fail with ErrProviderUnavailable.
func NewProvidersFromConfig(ctx context.Context, cfg config.AIConfig) (*Providers, error) {
	defaultKind, err := ParseKind(cfg.Provider)
	if err != nil {
		return nil, err
	}

	router := NewRouter(defaultKind)

	if cfg.OpenAIKey != "" {
		router.Register(KindOpenAI, WithTimeout(NewOpenAIProvider("openai", cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), cfg.Timeout))
	}
	if cfg.DeepSeekKey != "" {
		router.Register(KindDeepSeek, WithTimeout(NewOpenAIProvider("deepseek", cfg.DeepSeekKey, DeepSeekBaseURL, "deepseek-chat"), cfg.Timeout))
	}
	if cfg.TogetherKey != "" {
		router.Register(KindTogether, WithTimeout(NewOpenAIProvider("together", cfg.TogetherKey, TogetherBaseURL, "meta-llama/Llama-3-8b-chat-hf"), cfg.Timeout))
	}
	if cfg.GroqKey != "" {
		router.Register(KindGroq, WithTimeout(NewOpenAIProvider("groq", cfg.GroqKey, GroqBaseURL, "llama3-8b-8192"), cfg.Timeout))
	}

	if cfg.Ark.Enabled() {
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("init ark chat model: %w", err)
		}
		router.Register(KindArk, WithTimeout(NewChatModelProvider("ark", chatModel), cfg.Timeout))
	}

	ollamaURL, err := cfg.OllamaURL()
	if err != nil {
		return nil, err
	}
	ollamaClient := api.NewClient(ollamaURL, http.DefaultClient)

	router.Register(KindOllama, WithTimeout(NewOllamaProvider(ollamaClient, cfg.OllamaModel, OllamaOptions{
		Temperature:   cfg.OllamaTemperature,
		MaxTokens:     cfg.AskMaxTokens,
		ContextWindow: cfg.AskContextWindow,
	}), cfg.Timeout))

	if _, err := router.Provider(defaultKind); err != nil {
		log.Printf("[ai] default provider %s has no credentials; chat completions will fail", defaultKind)
	}

	return &Providers{
		Chat: router,
		Ask: WithTimeout(NewOllamaProvider(ollamaClient, cfg.OllamaModel, OllamaOptions{
			Temperature:   cfg.OllamaTemperature,
			MaxTokens:     cfg.AskMaxTokens,
			ContextWindow: cfg.AskContextWindow,
		}), cfg.Timeout),
		Tweet: WithTimeout(NewOllamaProvider(ollamaClient, cfg.OllamaModel, OllamaOptions{
			Temperature: cfg.OllamaTemperature,
			MaxTokens:   cfg.TweetMaxTokens,
		}), cfg.Timeout),
		Ollama: ollamaClient,
	}, nil
}
