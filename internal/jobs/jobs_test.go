package jobs

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/database"
	"github.com/papertrader/engine/internal/providers"
)

// newTestDB builds an in-memory database with the full schema applied,
// used across the worker tests in this package.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeProvider is a minimal providers.Provider test double. Every
// capability defaults to Empty unless the corresponding field is set.
type fakeProvider struct {
	name  string
	price *float64
	info  *providers.Info
	bars  []providers.Bar
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchInfo(symbol string) providers.InfoResult {
	if f.info == nil {
		return providers.InfoResult{Outcome: providers.Empty, Reason: "no info"}
	}
	return providers.InfoResult{Outcome: providers.Found, Info: *f.info}
}

func (f *fakeProvider) FetchCurrentPrice(symbol string) providers.PriceResult {
	if f.price == nil {
		return providers.PriceResult{Outcome: providers.Empty, Reason: "no price"}
	}
	return providers.PriceResult{Outcome: providers.Found, Price: f.price}
}

func (f *fakeProvider) FetchHistorical(symbol string, period providers.Period) providers.HistoricalResult {
	if len(f.bars) == 0 {
		return providers.HistoricalResult{Outcome: providers.Empty, Reason: "no bars"}
	}
	return providers.HistoricalResult{Outcome: providers.Found, Bars: f.bars}
}

func (f *fakeProvider) FetchIndicators(symbol string) providers.IndicatorResult {
	return providers.IndicatorResult{Outcome: providers.Empty, Reason: "not implemented by fake"}
}

func fPtr(f float64) *float64 { return &f }

func singleProviderRegistry(p *fakeProvider) *providers.Registry {
	order := []providers.Provider{p}
	return providers.NewCustomRegistry(order, order, order, order, testLogger())
}
