package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/repository"
)

type fixedClock bool

func (c fixedClock) Now() bool { return bool(c) }

func TestMarketRefresher_NoOpWhenMarketClosed(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	marketData := repository.NewMarketDataRepository(conn, testLogger())
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	registry := singleProviderRegistry(&fakeProvider{name: "fake", price: fPtr(150)})
	refresher := NewMarketRefresher(instruments, marketData, fixedClock(false), registry, testLogger())
	require.NoError(t, refresher.Run())

	bars, err := marketData.RecentBars(inst.ID, domain.Interval1Min, 10)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestMarketRefresher_AppendsBarPerActiveInstrumentWhenOpen(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	marketData := repository.NewMarketDataRepository(conn, testLogger())
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)

	registry := singleProviderRegistry(&fakeProvider{name: "fake", price: fPtr(150)})
	refresher := NewMarketRefresher(instruments, marketData, fixedClock(true), registry, testLogger())
	require.NoError(t, refresher.Run())

	bars, err := marketData.RecentBars(inst.ID, domain.Interval1Min, 10)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 150.0, bars[0].Close)
}
