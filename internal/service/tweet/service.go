// Package tweet generates tweet-length content on the local model.
package tweet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/augustine-bot/augustine/backend/internal/service/ai"
)

const (
	promptTemplate   = "Provide a tweet-length response (maximum 280 characters, no hashtags, no icons, no emojis) to: %s"
	responseTemplate = "Provide a tweet-length response (maximum 280 characters, no hashtags, no icons, no emojis) to this message: %s"
	wisePrompt       = "Share a brief, profound spiritual insight or reflection in a tweet (maximum 280 characters, no hashtags, no icons, no emojis)."
)

// ErrMessageRequired is returned by Respond for an empty message.
var ErrMessageRequired = errors.New("message is required")

// Generated is a tweet produced from one of the configured prompts.
type Generated struct {
	Tweet  string `json:"tweet"`
	Prompt string `json:"prompt"`
}

// Service produces shaped tweets.
type Service struct {
	provider    ai.Provider
	promptsPath string
	pick        func(n int) int
}

// NewService creates a Service reading prompts from promptsPath on each call.
func NewService(provider ai.Provider, promptsPath string) *Service {
	return &Service{
		provider:    provider,
		promptsPath: promptsPath,
		pick:        rand.IntN,
	}
}

// Tweet answers a randomly chosen prompt from the prompts file.
func (s *Service) Tweet(ctx context.Context) (Generated, error) {
	prompts, err := LoadPrompts(s.promptsPath)
	if err != nil {
		return Generated{}, err
	}
	prompt := prompts[s.pick(len(prompts))]

	tweet, err := s.complete(ctx, fmt.Sprintf(promptTemplate, prompt))
	if err != nil {
		return Generated{}, err
	}
	return Generated{Tweet: tweet, Prompt: prompt}, nil
}

// WiseTweet produces a standalone spiritual reflection.
func (s *Service) WiseTweet(ctx context.Context) (string, error) {
	return s.complete(ctx, wisePrompt)
}

// Respond writes a tweet-length reply to message.
func (s *Service) Respond(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}
	return s.complete(ctx, fmt.Sprintf(responseTemplate, message))
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("tweet: %w", ai.ErrProviderUnavailable)
	}

	out, err := s.provider.Complete(ctx, []ai.Message{{Role: ai.RoleUser, Content: prompt}})
	if err != nil {
		return "", ai.Classify(s.provider.Name(), err)
	}

	tweet := Shape(out)
	log.Printf("[tweet] generated %d chars", len([]rune(tweet)))
	return tweet, nil
}
