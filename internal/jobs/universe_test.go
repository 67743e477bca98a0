package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/aiplatform"
	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/repository"
)

type fakePlatform struct {
	name     string
	response string
	err      error
}

func (p *fakePlatform) Name() string { return p.name }
func (p *fakePlatform) GenerateStockList(prompt string) (string, error) {
	return p.response, p.err
}

func TestParseStockList_AcceptsJSONCommaAndNewline(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, parseStockList(`["aapl", "msft"]`))
	assert.Equal(t, []string{"AAPL", "MSFT"}, parseStockList("aapl, msft"))
	assert.Equal(t, []string{"AAPL", "MSFT"}, parseStockList("aapl\nmsft"))
}

func TestParseAISymbols_StripsLabelAndBlacklist(t *testing.T) {
	out := parseAISymbols("Symbols: AAPL, MSFT, AND THE GOOG")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "GOOG")
	assert.NotContains(t, out, "AND")
	assert.NotContains(t, out, "THE")
}

func TestParseAISymbols_ExtractsSymbolsFromPlainSentence(t *testing.T) {
	out := parseAISymbols("I would suggest looking at AAPL and MSFT for this strategy.")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
	assert.NotContains(t, out, "AND")
}

func TestParseAISymbols_RegexFallbackWhenNoTokenSplitsCleanly(t *testing.T) {
	out := parseAISymbols("consider buying some aapl-class shares or msft.o instead")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
}

func TestDefaultUniverse_KeywordBucketsPrompt(t *testing.T) {
	assert.Equal(t, defaultUniverseBuckets["tech"], defaultUniverse("growth tech stocks"))
	assert.Equal(t, defaultUniverseBuckets["finance"], defaultUniverse("regional banking picks"))
	assert.Equal(t, defaultUniverseBuckets["default"], defaultUniverse("something unrelated"))
}

func TestUniverseResolver_ManualModeParsesStockList(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	strategies := repository.NewStrategyRepository(conn, testLogger())
	settings := repository.NewSettingRepository(conn, testLogger())
	ai := aiplatform.NewRegistry(nil, testLogger())
	resolver := NewUniverseResolver(strategies, settings, ai, testLogger())

	strategy := domain.Strategy{StockListMode: domain.StockListModeManual, StockList: "aapl, msft, aapl"}
	assert.Equal(t, []string{"AAPL", "MSFT"}, resolver.Resolve(strategy))
}

func TestUniverseResolver_AIModeCachesAcrossCalls(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	strategies := repository.NewStrategyRepository(conn, testLogger())
	settings := repository.NewSettingRepository(conn, testLogger())

	platform := &fakePlatform{name: "deepseek", response: "AAPL, MSFT"}
	ai := aiplatform.NewRegistry([]aiplatform.Platform{platform}, testLogger())
	resolver := NewUniverseResolver(strategies, settings, ai, testLogger())

	strategy := domain.Strategy{
		ID: "strat-1", StockListMode: domain.StockListModeAI,
		StockListAIPrompt: "tech growth", Parameters: map[string]interface{}{},
	}
	require.NoError(t, strategies.Create(strategy))

	first := resolver.Resolve(strategy)
	assert.Equal(t, []string{"AAPL", "MSFT"}, first)

	platform.response = "GOOG, NVDA" // changing this must not affect a cache hit
	second := resolver.Resolve(strategy)
	assert.Equal(t, []string{"AAPL", "MSFT"}, second, "second call within 24h must hit the cache")
}

func TestUniverseResolver_AIFailureFallsBackToStockList(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	strategies := repository.NewStrategyRepository(conn, testLogger())
	settings := repository.NewSettingRepository(conn, testLogger())

	platform := &fakePlatform{name: "deepseek", err: assert.AnError}
	ai := aiplatform.NewRegistry([]aiplatform.Platform{platform}, testLogger())
	resolver := NewUniverseResolver(strategies, settings, ai, testLogger())

	strategy := domain.Strategy{
		StockListMode: domain.StockListModeAI, StockListAIPrompt: "tech growth",
		StockList: "IBM, ORCL",
	}
	out := resolver.Resolve(strategy)
	assert.Equal(t, []string{"IBM", "ORCL"}, out)
}

func TestUniverseResolver_AIFailureWithNoFallbackUsesDefaultUniverse(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	strategies := repository.NewStrategyRepository(conn, testLogger())
	settings := repository.NewSettingRepository(conn, testLogger())

	platform := &fakePlatform{name: "deepseek", err: assert.AnError}
	ai := aiplatform.NewRegistry([]aiplatform.Platform{platform}, testLogger())
	resolver := NewUniverseResolver(strategies, settings, ai, testLogger())

	strategy := domain.Strategy{
		StockListMode: domain.StockListModeAI, StockListAIPrompt: "tech growth",
	}
	out := resolver.Resolve(strategy)
	assert.Equal(t, defaultUniverseBuckets["tech"], out)
}
