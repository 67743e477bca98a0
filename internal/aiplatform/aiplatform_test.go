package aiplatform

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubPlatform struct{ name string }

func (p *stubPlatform) Name() string { return p.name }
func (p *stubPlatform) GenerateStockList(prompt string) (string, error) {
	return "", nil
}

func TestRegistry_ResolveDefaultsToDeepseek(t *testing.T) {
	r := NewRegistry([]Platform{&stubPlatform{name: "deepseek"}, &stubPlatform{name: "openai"}}, zerolog.Nop())

	p, ok := r.Resolve("")
	assert.True(t, ok)
	assert.Equal(t, "deepseek", p.Name())
}

func TestRegistry_ResolveByName(t *testing.T) {
	r := NewRegistry([]Platform{&stubPlatform{name: "deepseek"}, &stubPlatform{name: "openai"}}, zerolog.Nop())

	p, ok := r.Resolve("openai")
	assert.True(t, ok)
	assert.Equal(t, "openai", p.Name())
}

func TestRegistry_ResolveUnknownPlatform(t *testing.T) {
	r := NewRegistry(nil, zerolog.Nop())

	_, ok := r.Resolve("claude")
	assert.False(t, ok)
}
