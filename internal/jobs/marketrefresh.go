package jobs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/providers"
	"github.com/papertrader/engine/internal/repository"
)

// marketClock reports whether the market is currently open. Satisfied
// by *marketcalendar.Service; narrowed to an interface so tests can
// supply a fixed answer without depending on wall-clock time.
type marketClock interface {
	Now() bool
}

// MarketRefresher is the market-data refresher worker: while the
// market is open, appends a 1-minute bar per active instrument from a
// live quote.
type MarketRefresher struct {
	instruments *repository.InstrumentRepository
	marketData  *repository.MarketDataRepository
	calendar    marketClock
	registry    *providers.Registry
	log         zerolog.Logger
}

func NewMarketRefresher(instruments *repository.InstrumentRepository, marketData *repository.MarketDataRepository,
	calendar marketClock, registry *providers.Registry, log zerolog.Logger) *MarketRefresher {
	return &MarketRefresher{
		instruments: instruments,
		marketData:  marketData,
		calendar:    calendar,
		registry:    registry,
		log:         log.With().Str("worker", "market_refresher").Logger(),
	}
}

func (mr *MarketRefresher) Run() error {
	if !mr.calendar.Now() {
		return nil
	}

	active, err := mr.instruments.ListActive()
	if err != nil {
		return fmt.Errorf("list active instruments: %w", err)
	}

	now := time.Now()
	for _, inst := range active {
		res := mr.registry.FetchCurrentPrice(inst.Symbol)
		if res.Outcome != providers.Found || res.Price == nil {
			continue
		}

		bar := domain.MarketData{
			InstrumentID: inst.ID,
			Timestamp:    now,
			Interval:     domain.Interval1Min,
			Open:         *res.Price,
			High:         *res.Price,
			Low:          *res.Price,
			Close:        *res.Price,
			Volume:       0,
		}
		if err := mr.marketData.Create(bar); err != nil {
			mr.log.Error().Err(err).Str("symbol", inst.Symbol).Msg("failed to append market data bar")
		}
	}
	return nil
}
