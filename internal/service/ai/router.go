package ai

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Kind names a completion backend.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindArk       Kind = "ark"
	KindOllama    Kind = "ollama"
	KindDeepSeek  Kind = "deepseek"
	KindTogether  Kind = "together"
	KindGroq      Kind = "groq"
	KindAnthropic Kind = "anthropic"
)

var knownKinds = map[Kind]struct{}{
	KindOpenAI:    {},
	KindArk:       {},
	KindOllama:    {},
	KindDeepSeek:  {},
	KindTogether:  {},
	KindGroq:      {},
	KindAnthropic: {},
}

// ParseKind validates a provider name.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownKinds[kind]; !ok {
		return "", fmt.Errorf("unknown provider %q", raw)
	}
	return kind, nil
}

// Router dispatches completions to registered providers.
type Router struct {
	providers map[Kind]Provider
	defaultK  Kind
}

// NewRouter creates a Router whose Complete uses defaultKind.
func NewRouter(defaultKind Kind) *Router {
	return &Router{
		providers: make(map[Kind]Provider),
		defaultK:  defaultKind,
	}
}

// Register binds a provider to kind, replacing any previous binding.
func (r *Router) Register(kind Kind, p Provider) {
	if p == nil {
		return
	}
	r.providers[kind] = p
	log.Printf("[ai] registered provider %s (%s)", kind, p.Name())
}

// Provider returns the provider bound to kind.
func (r *Router) Provider(kind Kind) (Provider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, ErrProviderUnavailable)
	}
	return p, nil
}

// Kinds lists the registered provider kinds in name order.
func (r *Router) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.providers))
	for k := range r.providers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Name implements Provider.
func (r *Router) Name() string {
	return "router:" + string(r.defaultK)
}

// Complete sends messages to the default provider.
func (r *Router) Complete(ctx context.Context, messages []Message) (string, error) {
	p, err := r.Provider(r.defaultK)
	if err != nil {
		return "", err
	}
	out, err := p.Complete(ctx, messages)
	if err != nil {
		return "", Classify(p.Name(), err)
	}
	return out, nil
}
