package jobs

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/providers"
	"github.com/papertrader/engine/internal/repository"
)

// Revaluer is the position revaluer worker: marks every open
// position to market. A failure on one instrument never aborts the
// rest of the batch.
type Revaluer struct {
	positions *repository.PositionRepository
	registry  *providers.Registry
	log       zerolog.Logger
}

func NewRevaluer(positions *repository.PositionRepository, registry *providers.Registry, log zerolog.Logger) *Revaluer {
	return &Revaluer{positions: positions, registry: registry, log: log.With().Str("worker", "position_revaluer").Logger()}
}

func (rv *Revaluer) Run() error {
	open, err := rv.positions.ListAllOpen()
	if err != nil {
		return fmt.Errorf("list open positions: %w", err)
	}

	for _, p := range open {
		res := rv.registry.FetchCurrentPrice(p.Symbol)
		if res.Outcome != providers.Found || res.Price == nil {
			rv.log.Debug().Str("symbol", p.Symbol).Msg("no current price available, skipping revaluation")
			continue
		}

		unrealized := (*res.Price - p.AverageEntryPrice) * p.Quantity
		if err := rv.positions.UpdateMarketValue(p.ID, *res.Price, unrealized); err != nil {
			rv.log.Error().Err(err).Str("symbol", p.Symbol).Msg("failed to persist revaluation")
			continue
		}
	}
	return nil
}
