package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/aiplatform"
	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/indicators"
	"github.com/papertrader/engine/internal/repository"
)

func TestResolveParameters_DefaultsWhenAbsent(t *testing.T) {
	p := resolveParameters(map[string]interface{}{})
	assert.Equal(t, 10.0, p.MaxPositionSizePercent)
	assert.Equal(t, 25.0, p.MaxPortfolioRiskPercent)
	assert.Equal(t, 5.0, p.StopLossPercent)
	assert.Equal(t, 15.0, p.TakeProfitPercent)
	assert.Equal(t, 30.0, p.RSIOversold)
	assert.Equal(t, 70.0, p.RSIOverbought)
	assert.Equal(t, 1_000_000.0, p.MinVolume)
	assert.Equal(t, 10, p.MaxPositions)
	assert.False(t, p.hasFundamentalKey)
	assert.False(t, p.hasValuationParam)
}

func TestResolveParameters_OverridesAndFundamentalDetection(t *testing.T) {
	p := resolveParameters(map[string]interface{}{
		"max_position_size_percent": 20.0,
		"max_pe":                    "18.5",
		"underlying_quality_required": true,
	})
	assert.Equal(t, 20.0, p.MaxPositionSizePercent)
	assert.True(t, p.hasFundamentalKey)
	assert.True(t, p.hasValuationParam)
	assert.True(t, p.requiresQuality)
	assert.Equal(t, 18.5, p.thresholds.MaxPE)
}

func TestClassify_ThresholdsMatchSpec(t *testing.T) {
	signal, _ := classify(3)
	assert.Equal(t, domain.SignalBuy, signal)
	signal, _ = classify(2)
	assert.Equal(t, domain.SignalHold, signal)
	signal, _ = classify(-3)
	assert.Equal(t, domain.SignalSell, signal)
	signal, _ = classify(-2)
	assert.Equal(t, domain.SignalHold, signal)
}

func TestCompositeScore_AccumulatesEachFactor(t *testing.T) {
	bundle := indicators.Bundle{
		RSI14:          fPtr(20),
		Trend:          indicators.TrendBullish,
		Oversold:       true,
		NearSupport:    true,
		NearResistance: false,
	}
	params := resolveParameters(map[string]interface{}{"rsi_oversold": 30.0, "rsi_overbought": 70.0})
	score := compositeScore(bundle, params, false, 0, false, false)
	// RSI oversold (+2) + bullish trend (+1) + oversold flag (+1) + near support (+1) = 5
	assert.Equal(t, 5, score)
}

func TestCompositeScore_FundamentalContributionsOnlyWhenActive(t *testing.T) {
	bundle := indicators.Bundle{}
	params := resolveParameters(map[string]interface{}{"min_quality_score": 70.0})
	params.hasValuationParam = true
	params.requiresQuality = true

	inactive := compositeScore(bundle, params, false, 90, true, true)
	assert.Equal(t, 0, inactive)

	active := compositeScore(bundle, params, true, 90, true, true)
	// quality_score > threshold (+1) + meets_quality&&requires (+1) + meets_valuation&&hasParam (+1) = 3
	assert.Equal(t, 3, active)
}

func TestTradingBot_LowVolumeAlwaysHolds(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	accounts := repository.NewAccountRepository(conn, testLogger())
	strategies := repository.NewStrategyRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	positions := repository.NewPositionRepository(conn, testLogger())
	orders := repository.NewOrderRepository(conn, testLogger())
	marketData := repository.NewMarketDataRepository(conn, testLogger())
	signals := repository.NewSignalRepository(conn, testLogger())
	settings := repository.NewSettingRepository(conn, testLogger())

	strategy := domain.Strategy{
		ID: "strat-1", StockListMode: domain.StockListModeManual, StockList: "AAPL",
		Parameters: map[string]interface{}{"min_volume": 5_000_000.0}, Active: true,
	}
	require.NoError(t, strategies.Create(strategy))
	strategyID := strategy.ID
	account := domain.Account{
		ID: "acct-1", Name: "Test", Type: domain.AccountTypeVirtual, CashBalance: 10000,
		Currency: "USD", Status: domain.AccountStatusActive, StrategyID: &strategyID,
	}
	require.NoError(t, accounts.Create(account))

	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)
	require.NoError(t, marketData.Create(domain.MarketData{
		InstrumentID: inst.ID, Timestamp: time.Now(), Interval: domain.Interval1Day,
		Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000,
	}))

	registry := singleProviderRegistry(&fakeProvider{name: "fake", price: fPtr(100)})
	ai := aiplatform.NewRegistry(nil, testLogger())
	universe := NewUniverseResolver(strategies, settings, ai, testLogger())
	bot := NewTradingBot(accounts, strategies, instruments, positions, orders, marketData, signals, registry, universe, testLogger())

	require.NoError(t, bot.Run())

	sigs, err := signals.ListByInstrument(inst.ID, 10)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, domain.SignalHold, sigs[0].SignalType)
	assert.Equal(t, "Low volume", sigs[0].Reason)

	pending, err := orders.ListPendingFIFO()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTradingBot_ExecuteBuy_SizesPositionFromCashBudget(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	accounts := repository.NewAccountRepository(conn, testLogger())
	orders := repository.NewOrderRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())

	account := domain.Account{ID: "acct-1", Name: "Test", Type: domain.AccountTypeVirtual, CashBalance: 10000, Currency: "USD", Status: domain.AccountStatusActive}
	require.NoError(t, accounts.Create(account))
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	bot := &TradingBot{orders: orders, log: testLogger()}
	strategy := domain.Strategy{ID: "strat-1"}
	params := resolveParameters(map[string]interface{}{"max_position_size_percent": 10.0})

	require.NoError(t, bot.executeBuy(account, strategy, params, inst, 100, map[string]domain.Position{}))

	pending, err := orders.ListPendingFIFO()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.OrderSideBuy, pending[0].Side)
	assert.Equal(t, 10.0, pending[0].Quantity) // floor(10000*0.10/100) = 10 shares
}

func TestTradingBot_ExecuteBuy_SkipsWhenPositionAlreadyExists(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	orders := repository.NewOrderRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	bot := &TradingBot{orders: orders, log: testLogger()}
	account := domain.Account{ID: "acct-1", CashBalance: 10000}
	strategy := domain.Strategy{ID: "strat-1"}
	params := resolveParameters(map[string]interface{}{})

	existing := map[string]domain.Position{"AAPL": {Symbol: "AAPL", Quantity: 5}}
	require.NoError(t, bot.executeBuy(account, strategy, params, inst, 100, existing))

	pending, err := orders.ListPendingFIFO()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTradingBot_ExecuteBuy_RefusesAtMaxPositions(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	orders := repository.NewOrderRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	bot := &TradingBot{orders: orders, log: testLogger()}
	account := domain.Account{ID: "acct-1", CashBalance: 10000}
	strategy := domain.Strategy{ID: "strat-1"}
	params := resolveParameters(map[string]interface{}{"max_positions": 1.0})

	existing := map[string]domain.Position{"MSFT": {Symbol: "MSFT", Quantity: 3}}
	require.NoError(t, bot.executeBuy(account, strategy, params, inst, 100, existing))

	pending, err := orders.ListPendingFIFO()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTradingBot_ExecuteSell_RequiresExistingPosition(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	orders := repository.NewOrderRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	bot := &TradingBot{orders: orders, log: testLogger()}
	account := domain.Account{ID: "acct-1"}
	strategy := domain.Strategy{ID: "strat-1"}

	require.NoError(t, bot.executeSell(account, strategy, inst, map[string]domain.Position{}))
	pending, err := orders.ListPendingFIFO()
	require.NoError(t, err)
	assert.Empty(t, pending)

	existing := map[string]domain.Position{"AAPL": {Symbol: "AAPL", Quantity: 7}}
	require.NoError(t, bot.executeSell(account, strategy, inst, existing))
	pending, err = orders.ListPendingFIFO()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 7.0, pending[0].Quantity)
}
