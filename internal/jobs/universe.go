package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/aiplatform"
	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/repository"
)

// aiCacheTTL is how long an AI-generated stock list stays fresh before
// the universe resolver re-calls the platform.
const aiCacheTTL = 24 * time.Hour

// aiCacheDocument is the JSON document stored in the settings table
// under category ai_cache.
type aiCacheDocument struct {
	StockList []string  `json:"stock_list"`
	CachedAt  time.Time `json:"cached_at"`
	CacheKey  string    `json:"cache_key"`
}

// UniverseResolver turns a strategy's stock_list_mode configuration into
// a concrete, deduplicated list of ticker symbols.
type UniverseResolver struct {
	strategies *repository.StrategyRepository
	settings   *repository.SettingRepository
	ai         *aiplatform.Registry
	log        zerolog.Logger
}

func NewUniverseResolver(strategies *repository.StrategyRepository, settings *repository.SettingRepository, ai *aiplatform.Registry, log zerolog.Logger) *UniverseResolver {
	return &UniverseResolver{
		strategies: strategies,
		settings:   settings,
		ai:         ai,
		log:        log.With().Str("component", "universe_resolver").Logger(),
	}
}

// Resolve returns the uppercased, trimmed, deduplicated universe for a
// strategy.
func (r *UniverseResolver) Resolve(strategy domain.Strategy) []string {
	if strategy.StockListMode == domain.StockListModeAI && strings.TrimSpace(strategy.StockListAIPrompt) != "" {
		return r.resolveAI(strategy)
	}
	return dedupeSymbols(parseStockList(strategy.StockList))
}

func (r *UniverseResolver) resolveAI(strategy domain.Strategy) []string {
	platform, _ := strategy.Parameters["ai_platform"].(string)
	key := cacheKey(strategy.StockListAIPrompt, platform)

	if setting, err := r.settings.Get(key); err == nil && setting.Category == domain.SettingCategoryAICache {
		var doc aiCacheDocument
		if jsonErr := json.Unmarshal([]byte(setting.Value), &doc); jsonErr == nil {
			if time.Since(doc.CachedAt) < aiCacheTTL && len(doc.StockList) > 0 {
				return doc.StockList
			}
		}
	}

	list := r.generate(strategy, platform, key)
	if len(list) > 0 {
		return list
	}

	if fallback := dedupeSymbols(parseStockList(strategy.StockList)); len(fallback) > 0 {
		return fallback
	}
	return defaultUniverse(strategy.StockListAIPrompt)
}

func (r *UniverseResolver) generate(strategy domain.Strategy, platform, key string) []string {
	p, ok := r.ai.Resolve(platform)
	if !ok {
		r.log.Warn().Str("platform", platform).Msg("unknown ai platform, skipping generation")
		return nil
	}

	response, err := p.GenerateStockList(strategy.StockListAIPrompt)
	if err != nil {
		r.log.Warn().Err(err).Str("platform", p.Name()).Msg("ai stock-list generation failed")
		return nil
	}

	list := dedupeSymbols(parseAISymbols(response))
	if len(list) == 0 {
		return nil
	}

	doc := aiCacheDocument{StockList: list, CachedAt: time.Now(), CacheKey: key}
	body, err := json.Marshal(doc)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to marshal ai cache document")
		return list
	}
	if err := r.settings.Upsert(key, string(body), domain.SettingCategoryAICache, true); err != nil {
		r.log.Warn().Err(err).Msg("failed to persist ai cache document")
	}
	if err := r.strategies.UpdateStockList(strategy.ID, strings.Join(list, ",")); err != nil {
		r.log.Warn().Err(err).Str("strategy_id", strategy.ID).Msg("failed to persist fallback stock_list")
	}
	return list
}

func cacheKey(prompt, platform string) string {
	sum := sha256.Sum256([]byte(prompt + "\x00" + platform))
	return "ai_cache:" + hex.EncodeToString(sum[:16])
}

// parseStockList accepts a JSON array, comma-separated, or
// newline-separated document and returns uppercased, trimmed symbols.
func parseStockList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return upperTrimAll(arr)
		}
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return upperTrimAll(fields)
}

func upperTrimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var symbolBlacklist = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "WITH": {}, "THIS": {},
	"THAT": {}, "FROM": {}, "HAVE": {}, "WILL": {}, "ARE": {}, "NOT": {},
}

var (
	symbolToken = regexp.MustCompile(`^[A-Z]{1,5}$`)
	symbolAny   = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	leadingLabel = regexp.MustCompile(`(?i)^\s*(symbols|stocks|tickers)\s*:\s*`)
)

// parseAISymbols extracts ticker symbols from a free-text AI response,
// per the strip-label / split / blacklist-filter / regex-fallback
// pipeline.
func parseAISymbols(text string) []string {
	text = leadingLabel.ReplaceAllString(text, "")

	var out []string
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*• \t")
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == '|' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			f = strings.Trim(f, ".()")
			if symbolToken.MatchString(f) && !isBlacklisted(f) {
				out = append(out, f)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, m := range symbolAny.FindAllString(strings.ToUpper(text), -1) {
		if !isBlacklisted(m) {
			out = append(out, m)
		}
	}
	return out
}

func isBlacklisted(s string) bool {
	_, ok := symbolBlacklist[s]
	return ok
}

var defaultUniverseBuckets = map[string][]string{
	"tech":       {"AAPL", "MSFT", "GOOGL", "NVDA", "AMD"},
	"finance":    {"JPM", "BAC", "GS", "MS", "WFC"},
	"health":     {"JNJ", "PFE", "UNH", "MRK", "ABBV"},
	"energy":     {"XOM", "CVX", "COP", "SLB", "EOG"},
	"consumer":   {"AMZN", "WMT", "PG", "KO", "MCD"},
	"industrial": {"CAT", "BA", "HON", "GE", "UPS"},
	"default":    {"SPY", "QQQ", "DIA", "IWM", "VTI"},
}

// defaultUniverse keyword-buckets a prompt into one of the fixed
// sector universes, falling back to the broad-market default.
func defaultUniverse(prompt string) []string {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "tech"):
		return defaultUniverseBuckets["tech"]
	case strings.Contains(p, "bank"), strings.Contains(p, "financ"):
		return defaultUniverseBuckets["finance"]
	case strings.Contains(p, "health"), strings.Contains(p, "pharma"), strings.Contains(p, "bio"):
		return defaultUniverseBuckets["health"]
	case strings.Contains(p, "energy"), strings.Contains(p, "oil"), strings.Contains(p, "gas"):
		return defaultUniverseBuckets["energy"]
	case strings.Contains(p, "consumer"), strings.Contains(p, "retail"):
		return defaultUniverseBuckets["consumer"]
	case strings.Contains(p, "industrial"), strings.Contains(p, "manufactur"):
		return defaultUniverseBuckets["industrial"]
	default:
		return defaultUniverseBuckets["default"]
	}
}
