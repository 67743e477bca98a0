package providers

import (
	"github.com/rs/zerolog"
)

// Registry fans a capability call out across providers in a
// capability-specific preferred order, stopping at the first Found.
type Registry struct {
	infoOrder       []Provider
	priceOrder      []Provider
	indicatorOrder  []Provider
	historicalOrder []Provider
	log             zerolog.Logger
}

// NewRegistry builds the registry with the vendor orders fixed by
// capability: info prefers FMP, price prefers Yahoo, indicators
// prefer Alpha Vantage, historical bars prefer Yahoo.
func NewRegistry(fmp *FMPProvider, av *AlphaVantageProvider, yahoo *YahooProvider, log zerolog.Logger) *Registry {
	return &Registry{
		infoOrder:       []Provider{fmp, av, yahoo},
		priceOrder:      []Provider{yahoo, av, fmp},
		indicatorOrder:  []Provider{av, yahoo, fmp},
		historicalOrder: []Provider{yahoo, av, fmp},
		log:             log.With().Str("component", "provider_registry").Logger(),
	}
}

// NewCustomRegistry builds a registry with explicit per-capability
// provider orders. NewRegistry covers the fixed vendor wiring; this is
// for tests and any alternate wiring that needs direct control over
// fallback order.
func NewCustomRegistry(info, price, indicatorOrder, historical []Provider, log zerolog.Logger) *Registry {
	return &Registry{
		infoOrder:       info,
		priceOrder:      price,
		indicatorOrder:  indicatorOrder,
		historicalOrder: historical,
		log:             log.With().Str("component", "provider_registry").Logger(),
	}
}

// FetchInfo tries each provider in the info preference order,
// returning the first Found result. A total miss returns the last
// provider's result (Empty or Failed), not an error.
func (r *Registry) FetchInfo(symbol string) InfoResult {
	var last InfoResult
	for _, p := range r.infoOrder {
		res := p.FetchInfo(symbol)
		r.logAttempt(p.Name(), "info", symbol, res.Outcome, res.Reason)
		if res.Outcome == Found {
			return res
		}
		last = res
	}
	return last
}

func (r *Registry) FetchCurrentPrice(symbol string) PriceResult {
	var last PriceResult
	for _, p := range r.priceOrder {
		res := p.FetchCurrentPrice(symbol)
		r.logAttempt(p.Name(), "price", symbol, res.Outcome, res.Reason)
		if res.Outcome == Found {
			return res
		}
		last = res
	}
	return last
}

func (r *Registry) FetchIndicators(symbol string) IndicatorResult {
	var last IndicatorResult
	for _, p := range r.indicatorOrder {
		res := p.FetchIndicators(symbol)
		r.logAttempt(p.Name(), "indicators", symbol, res.Outcome, res.Reason)
		if res.Outcome == Found {
			return res
		}
		last = res
	}
	return last
}

func (r *Registry) FetchHistorical(symbol string, period Period) HistoricalResult {
	var last HistoricalResult
	for _, p := range r.historicalOrder {
		res := p.FetchHistorical(symbol, period)
		r.logAttempt(p.Name(), "historical", symbol, res.Outcome, res.Reason)
		if res.Outcome == Found {
			return res
		}
		last = res
	}
	return last
}

func (r *Registry) logAttempt(provider, capability, symbol string, outcome Outcome, reason string) {
	event := r.log.Debug()
	switch outcome {
	case Failed:
		event = r.log.Warn()
	case Empty:
		event = r.log.Debug()
	}
	event.
		Str("provider", provider).
		Str("capability", capability).
		Str("symbol", symbol).
		Str("outcome", outcomeLabel(outcome)).
		Str("reason", reason).
		Msg("provider call")
}

func outcomeLabel(o Outcome) string {
	switch o {
	case Found:
		return "found"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}
