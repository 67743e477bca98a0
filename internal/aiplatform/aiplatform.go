// Package aiplatform implements the "generate a stock list from a
// prompt" capability used by the trading bot's AI universe mode,
// across the claude/openai/deepseek text platforms.
package aiplatform

import (
	"time"

	"github.com/rs/zerolog"
)

// Platform is a text-generation vendor capable of producing a
// stock-list response from a free-text prompt.
type Platform interface {
	Name() string
	GenerateStockList(prompt string) (string, error)
}

// Registry resolves a platform by name, defaulting to deepseek when
// the strategy parameter is absent.
type Registry struct {
	platforms map[string]Platform
	log       zerolog.Logger
}

func NewRegistry(platforms []Platform, log zerolog.Logger) *Registry {
	m := make(map[string]Platform, len(platforms))
	for _, p := range platforms {
		m[p.Name()] = p
	}
	return &Registry{platforms: m, log: log.With().Str("component", "aiplatform_registry").Logger()}
}

// DefaultPlatform is used when a strategy's ai_platform parameter is
// absent.
const DefaultPlatform = "deepseek"

func (r *Registry) Resolve(name string) (Platform, bool) {
	if name == "" {
		name = DefaultPlatform
	}
	p, ok := r.platforms[name]
	return p, ok
}

const httpTimeout = 30 * time.Second
