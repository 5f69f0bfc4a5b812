package llm

import (
	"context"
	"fmt"

	"github.com/opengov/earlymath/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg.Provider, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return base, nil
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, eventRepo)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

func newBaseProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch name {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}
	return base, nil
}

// NewRouterFromConfig assembles a failover Router over every provider in
// cfg.Order, most preferred first, falling back to cfg.Provider alone when
// no order is configured. Each entry carries the full retry and logging
// middleware chain, so the router only sees failures that survived the
// per-provider retry policy.
func NewRouterFromConfig(ctx context.Context, cfg Config, eventRepo store.EventRepo) (*Router, error) {
	names := cfg.Order
	if len(names) == 0 {
		names = []string{cfg.Provider}
	}

	rcfg := cfg.Router
	if rcfg.AttemptTimeout == 0 {
		rcfg.AttemptTimeout = cfg.Timeout
	}

	router := NewRouter(rcfg)
	for _, name := range names {
		sub := cfg
		sub.Provider = name
		p, err := NewProvider(ctx, sub, eventRepo)
		if err != nil {
			return nil, err
		}
		router.Add(name, p)
	}
	return router, nil
}
