package jobs

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/fundamentals"
	"github.com/papertrader/engine/internal/indicators"
	"github.com/papertrader/engine/internal/providers"
	"github.com/papertrader/engine/internal/repository"
)

// parameters is the resolved, defaulted view of a strategy's parameter
// bag. Every recognized key is optional in the stored document; absent
// keys take the defaults below.
type parameters struct {
	MaxPositionSizePercent  float64
	MaxPortfolioRiskPercent float64
	StopLossPercent         float64
	TakeProfitPercent       float64
	RSIOversold             float64
	RSIOverbought           float64
	MinVolume               float64
	MaxPositions            int
	MinQualityScore         float64
	AIPlatform              string

	hasFundamentalKey  bool
	hasValuationParam  bool
	requiresQuality    bool
	thresholds         fundamentals.Thresholds
}

var fundamentalParamKeys = []string{
	"min_quality_score", "max_pe", "max_pb", "max_pe_ratio", "max_peg",
	"min_dividend_yield", "minimum_roe_percent", "min_revenue_growth",
	"min_eps_growth", "conviction_score_minimum", "preferred_industry_moat",
	"sell_on_fundamental_shift", "underlying_quality_required",
	"narrative_match_required", "discount_to_intrinsic_value",
	"required_margin_of_safety_percent",
}

var valuationParamKeys = []string{
	"max_pe", "max_pb", "max_pe_ratio", "max_peg",
	"discount_to_intrinsic_value", "required_margin_of_safety_percent",
}

// resolveParameters merges a strategy's parameter bag with defaults,
// accepting either a structured map or its common textual
// serializations for each scalar value.
func resolveParameters(raw map[string]interface{}) parameters {
	p := parameters{
		MaxPositionSizePercent:  paramFloat(raw, "max_position_size_percent", 10),
		MaxPortfolioRiskPercent: paramFloat(raw, "max_portfolio_risk_percent", 25),
		StopLossPercent:         paramFloat(raw, "stop_loss_percent", 5),
		TakeProfitPercent:       paramFloat(raw, "take_profit_percent", 15),
		RSIOversold:             paramFloat(raw, "rsi_oversold", 30),
		RSIOverbought:           paramFloat(raw, "rsi_overbought", 70),
		MinVolume:               paramFloat(raw, "min_volume", 1_000_000),
		MaxPositions:            int(paramFloat(raw, "max_positions", 10)),
		MinQualityScore:         paramFloat(raw, "min_quality_score", 70),
		AIPlatform:              paramString(raw, "ai_platform"),
	}

	for _, key := range fundamentalParamKeys {
		if _, ok := raw[key]; ok {
			p.hasFundamentalKey = true
			break
		}
	}
	for _, key := range valuationParamKeys {
		if _, ok := raw[key]; ok {
			p.hasValuationParam = true
			break
		}
	}
	p.requiresQuality = paramBool(raw, "underlying_quality_required")

	p.thresholds = fundamentals.DefaultThresholds()
	p.thresholds.MinQualityScore = p.MinQualityScore
	if maxPE := paramFloat(raw, "max_pe", 0); maxPE > 0 {
		p.thresholds.MaxPE = maxPE
	}
	if minROE := paramFloat(raw, "minimum_roe_percent", 0); minROE > 0 {
		p.thresholds.MinROE = minROE / 100
	}
	if minGrowth := paramFloat(raw, "min_revenue_growth", 0); minGrowth > 0 {
		p.thresholds.MinGrowth = minGrowth
	}

	return p
}

func paramFloat(raw map[string]interface{}, key string, def float64) float64 {
	v, ok := raw[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return def
}

func paramString(raw map[string]interface{}, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func paramBool(raw map[string]interface{}, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// TradingBot is the decision pipeline: per account, resolve the
// strategy's universe, score each symbol, and emit orders for the
// symbols that cross a threshold.
type TradingBot struct {
	accounts    *repository.AccountRepository
	strategies  *repository.StrategyRepository
	instruments *repository.InstrumentRepository
	positions   *repository.PositionRepository
	orders      *repository.OrderRepository
	marketData  *repository.MarketDataRepository
	signals     *repository.SignalRepository
	registry    *providers.Registry
	universe    *UniverseResolver
	log         zerolog.Logger
}

func NewTradingBot(
	accounts *repository.AccountRepository,
	strategies *repository.StrategyRepository,
	instruments *repository.InstrumentRepository,
	positions *repository.PositionRepository,
	orders *repository.OrderRepository,
	marketData *repository.MarketDataRepository,
	signals *repository.SignalRepository,
	registry *providers.Registry,
	universe *UniverseResolver,
	log zerolog.Logger,
) *TradingBot {
	return &TradingBot{
		accounts:    accounts,
		strategies:  strategies,
		instruments: instruments,
		positions:   positions,
		orders:      orders,
		marketData:  marketData,
		signals:     signals,
		registry:    registry,
		universe:    universe,
		log:         log.With().Str("worker", "trading_bot").Logger(),
	}
}

// Run executes one cycle across every eligible account.
func (b *TradingBot) Run() error {
	accounts, err := b.accounts.ListActive()
	if err != nil {
		return fmt.Errorf("list active accounts: %w", err)
	}

	for _, account := range accounts {
		if account.StrategyID == nil {
			continue
		}
		if err := b.runAccount(account); err != nil {
			b.log.Error().Err(err).Str("account_id", account.ID).Msg("trading bot cycle failed for account")
		}
	}
	return nil
}

func (b *TradingBot) runAccount(account domain.Account) error {
	strategy, err := b.strategies.GetByID(*account.StrategyID)
	if err != nil {
		return fmt.Errorf("resolve strategy: %w", err)
	}

	params := resolveParameters(strategy.Parameters)
	symbols := b.universe.Resolve(*strategy)
	if len(symbols) == 0 {
		return nil
	}

	existing, err := b.positions.ListByAccount(account.ID)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	bySymbol := make(map[string]domain.Position, len(existing))
	for _, p := range existing {
		bySymbol[p.Symbol] = p
	}

	for _, symbol := range symbols {
		if err := b.decide(account, *strategy, params, symbol, bySymbol); err != nil {
			b.log.Error().Err(err).Str("account_id", account.ID).Str("symbol", symbol).Msg("decision failed for symbol")
		}
	}
	return nil
}

func (b *TradingBot) decide(account domain.Account, strategy domain.Strategy, params parameters, symbol string, positions map[string]domain.Position) error {
	inst, err := b.instruments.EnsureExists(symbol)
	if err != nil {
		return fmt.Errorf("ensure instrument: %w", err)
	}

	bars := b.historicalBars(inst.ID, symbol)
	if len(bars) == 0 {
		b.log.Warn().Str("symbol", symbol).Msg("no price data available, skipping symbol")
		return nil
	}
	last := bars[len(bars)-1]

	if last.Volume < params.MinVolume {
		return b.persistHold(inst, strategy.ID, last.Close, "Low volume", nil)
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
	}
	bundle := indicators.Compute(closes, highs, lows, params.RSIOversold, params.RSIOverbought)

	var faActive bool
	var quality float64
	var meetsQuality, meetsValuation bool
	if params.hasFundamentalKey {
		info := b.registry.FetchInfo(symbol)
		if info.Outcome == providers.Found {
			faActive = true
			fa := toFundamentalsInfo(info.Info)
			quality = fundamentals.QualityScore(fa)
			meetsQuality = fundamentals.MeetsQuality(fa, params.thresholds)
			meetsValuation = fundamentals.MeetsValuation(fa, params.thresholds)
		}
	}

	score := compositeScore(bundle, params, faActive, quality, meetsQuality, meetsValuation)
	signalType, reason := classify(score)
	confidence := math.Min(0.9, math.Abs(float64(score))/10+0.5)

	indicatorsDoc := buildIndicatorsDocument(bundle, faActive, quality, meetsQuality, meetsValuation, score, confidence)
	if err := b.signals.Create(domain.TradingSignal{
		InstrumentID:   inst.ID,
		Symbol:         symbol,
		StrategyID:     strategy.ID,
		Timestamp:      time.Now(),
		SignalType:     signalType,
		Strength:       score,
		Price:          last.Close,
		Confidence:     confidence,
		IndicatorsUsed: indicatorsDoc,
		Reason:         reason,
	}); err != nil {
		return fmt.Errorf("persist signal: %w", err)
	}

	switch signalType {
	case domain.SignalBuy:
		return b.executeBuy(account, strategy, params, inst, last.Close, positions)
	case domain.SignalSell:
		return b.executeSell(account, strategy, inst, positions)
	default:
		return nil
	}
}

func (b *TradingBot) persistHold(inst *domain.Instrument, strategyID string, price float64, reason string, indicatorsDoc map[string]interface{}) error {
	if indicatorsDoc == nil {
		indicatorsDoc = map[string]interface{}{}
	}
	indicatorsDoc["signal_score"] = 0
	indicatorsDoc["confidence"] = 0.5
	return b.signals.Create(domain.TradingSignal{
		InstrumentID:   inst.ID,
		Symbol:         inst.Symbol,
		StrategyID:     strategyID,
		Timestamp:      time.Now(),
		SignalType:     domain.SignalHold,
		Strength:       0,
		Price:          price,
		Confidence:     0.5,
		IndicatorsUsed: indicatorsDoc,
		Reason:         reason,
	})
}

// historicalBars returns up to 250 locally stored daily bars for the
// instrument, backfilling from the provider registry (one year of bars,
// returned in full) when local history is too thin to compute
// indicators, and falling back to a single
// live-quote-synthesized bar when no history is obtainable at all.
func (b *TradingBot) historicalBars(instrumentID int64, symbol string) []domain.MarketData {
	bars, err := b.marketData.RecentBars(instrumentID, domain.Interval1Day, 250)
	if err != nil {
		b.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to read local market data")
	}
	if len(bars) > 1 {
		return bars
	}

	hist := b.registry.FetchHistorical(symbol, providers.Period1Year)
	if hist.Outcome == providers.Found && len(hist.Bars) > 0 {
		converted := make([]domain.MarketData, 0, len(hist.Bars))
		for _, raw := range hist.Bars {
			converted = append(converted, domain.MarketData{
				InstrumentID: instrumentID,
				Timestamp:    raw.Timestamp,
				Interval:     domain.Interval1Day,
				Open:         raw.Open,
				High:         raw.High,
				Low:          raw.Low,
				Close:        raw.Close,
				Volume:       float64(raw.Volume),
			})
		}
		if err := b.marketData.CreateBulk(converted); err != nil {
			b.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist backfilled bars")
		}
		return converted
	}

	if len(bars) == 1 {
		return bars
	}

	price := b.registry.FetchCurrentPrice(symbol)
	if price.Outcome != providers.Found {
		return nil
	}
	return []domain.MarketData{{
		InstrumentID: instrumentID,
		Timestamp:    time.Now(),
		Interval:     domain.Interval1Day,
		Open:         *price.Price,
		High:         *price.Price,
		Low:          *price.Price,
		Close:        *price.Price,
		Volume:       0,
	}}
}

func toFundamentalsInfo(info providers.Info) fundamentals.Info {
	return fundamentals.Info{
		PERatio:       info.PERatio,
		ForwardPE:     info.ForwardPE,
		MarketCap:     info.MarketCap,
		Beta:          info.Beta,
		DividendYield: info.DividendYield,
		Sector:        info.Sector,
		RevenueGrowth: info.RevenueGrowth,
		ROE:           info.ROE,
		DebtToEquity:  info.DebtToEquity,
		ProfitMargin:  info.ProfitMargin,
	}
}

// compositeScore accumulates signed contributions from technical and,
// when active, fundamental signals into a single decision score.
func compositeScore(bundle indicators.Bundle, params parameters, faActive bool, quality float64, meetsQuality, meetsValuation bool) int {
	var score int

	if bundle.RSI14 != nil {
		if *bundle.RSI14 < params.RSIOversold {
			score += 2
		} else if *bundle.RSI14 > params.RSIOverbought {
			score -= 2
		}
	}

	switch bundle.Trend {
	case indicators.TrendBullish:
		score++
	case indicators.TrendBearish:
		score--
	}

	if bundle.Oversold {
		score++
	}
	if bundle.Overbought {
		score--
	}

	if faActive {
		if quality > params.MinQualityScore {
			score++
		}
		if meetsQuality && params.requiresQuality {
			score++
		}
		if meetsValuation && params.hasValuationParam {
			score++
		}
	}

	if bundle.NearSupport {
		score++
	}
	if bundle.NearResistance {
		score--
	}

	return score
}

func classify(score int) (domain.SignalType, string) {
	switch {
	case score >= 3:
		return domain.SignalBuy, fmt.Sprintf("composite score %d crossed the buy threshold", score)
	case score <= -3:
		return domain.SignalSell, fmt.Sprintf("composite score %d crossed the sell threshold", score)
	default:
		return domain.SignalHold, fmt.Sprintf("composite score %d within hold band", score)
	}
}

func buildIndicatorsDocument(bundle indicators.Bundle, faActive bool, quality float64, meetsQuality, meetsValuation bool, score int, confidence float64) map[string]interface{} {
	doc := map[string]interface{}{
		"close":           bundle.Close,
		"trend":           string(bundle.Trend),
		"overbought":      bundle.Overbought,
		"oversold":        bundle.Oversold,
		"near_support":    bundle.NearSupport,
		"near_resistance": bundle.NearResistance,
		"signal_score":    score,
		"confidence":      confidence,
	}
	if bundle.RSI14 != nil {
		doc["rsi14"] = *bundle.RSI14
	}
	if bundle.SMA20 != nil {
		doc["sma20"] = *bundle.SMA20
	}
	if bundle.SMA50 != nil {
		doc["sma50"] = *bundle.SMA50
	}
	if bundle.MACD != nil {
		doc["macd_histogram"] = bundle.MACD.Histogram
	}
	if faActive {
		doc["quality_score"] = quality
		doc["meets_quality"] = meetsQuality
		doc["meets_valuation"] = meetsValuation
	}
	return doc
}

func (b *TradingBot) executeBuy(account domain.Account, strategy domain.Strategy, params parameters, inst *domain.Instrument, price float64, positions map[string]domain.Position) error {
	if existing, ok := positions[inst.Symbol]; ok && existing.Quantity != 0 {
		return nil
	}
	if len(positions) >= params.MaxPositions {
		return nil
	}
	if price <= 0 {
		return nil
	}

	budget := math.Min(account.CashBalance*params.MaxPositionSizePercent/100, account.CashBalance)
	quantity := math.Floor(budget / price)
	if quantity < 1 {
		return nil
	}

	strategyID := strategy.ID
	_, err := b.orders.Create(domain.Order{
		ExternalOrderID: uuid.NewString(),
		AccountID:       account.ID,
		InstrumentID:    inst.ID,
		Symbol:          inst.Symbol,
		StrategyID:      &strategyID,
		Type:            domain.OrderTypeMarket,
		Side:            domain.OrderSideBuy,
		Quantity:        quantity,
		Status:          domain.OrderStatusPending,
		SubmittedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("emit buy order: %w", err)
	}
	return nil
}

func (b *TradingBot) executeSell(account domain.Account, strategy domain.Strategy, inst *domain.Instrument, positions map[string]domain.Position) error {
	existing, ok := positions[inst.Symbol]
	if !ok || existing.Quantity == 0 {
		return nil
	}

	strategyID := strategy.ID
	_, err := b.orders.Create(domain.Order{
		ExternalOrderID: uuid.NewString(),
		AccountID:       account.ID,
		InstrumentID:    inst.ID,
		Symbol:          inst.Symbol,
		StrategyID:      &strategyID,
		Type:            domain.OrderTypeMarket,
		Side:            domain.OrderSideSell,
		Quantity:        existing.Quantity,
		Status:          domain.OrderStatusPending,
		SubmittedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("emit sell order: %w", err)
	}
	return nil
}
