// Package providers implements the market-data provider abstraction
// a capability set of {info, price, indicators, historical}
// fanned out across vendor clients in a preferred order, with
// Found/Empty/Failed semantics per call so a vendor outage degrades to
// "try the next vendor" rather than an error.
package providers

import "time"

// Outcome is the sum-type result of a single provider call.
type Outcome int

const (
	// Found means the provider returned a payload with its capability's
	// sentinel field populated.
	Found Outcome = iota
	// Empty means the provider answered but had no data for the symbol.
	Empty
	// Failed means the call errored (network, auth, rate limit, parse).
	Failed
)

// Info is the normalized fundamental-info record. A nil field means
// the vendor didn't supply it, distinct from a supplied zero.
type Info struct {
	Symbol        string
	PERatio       *float64
	ForwardPE     *float64
	PEGRatio      *float64
	PriceToBook   *float64
	RevenueGrowth *float64
	ProfitMargin  *float64
	ROE           *float64
	DebtToEquity  *float64
	MarketCap     *float64
	DividendYield *float64
	Beta          *float64
	Sector        *string
	Industry      *string
	Description   *string
}

// InfoResult wraps an Info fetch outcome.
type InfoResult struct {
	Outcome Outcome
	Info    Info
	Reason  string
}

// PriceResult wraps a current-price fetch outcome. Price is the
// sentinel field for this capability.
type PriceResult struct {
	Outcome Outcome
	Price   *float64
	Reason  string
}

// IndicatorSet is the normalized technical-indicator record a vendor
// can supply directly (as opposed to the indicators this module
// computes itself from historical bars).
type IndicatorSet struct {
	RSI  *float64
	MACD *float64
	SMA  *float64
}

// IndicatorResult wraps an indicator fetch outcome. RSI is the
// sentinel field.
type IndicatorResult struct {
	Outcome    Outcome
	Indicators IndicatorSet
	Reason     string
}

// Bar is a single OHLCV historical data point.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// HistoricalResult wraps a historical-bars fetch outcome. A non-empty
// Bars slice is the sentinel condition.
type HistoricalResult struct {
	Outcome Outcome
	Bars    []Bar
	Reason  string
}

// Period is a historical-bars lookback window.
type Period string

const (
	Period1Month   Period = "1mo"
	Period3Months  Period = "3mo"
	Period6Months  Period = "6mo"
	Period1Year    Period = "1y"
)

// Provider is the capability set every concrete vendor client
// implements.
type Provider interface {
	Name() string
	FetchInfo(symbol string) InfoResult
	FetchCurrentPrice(symbol string) PriceResult
	FetchHistorical(symbol string, period Period) HistoricalResult
	FetchIndicators(symbol string) IndicatorResult
}

// CredentialSource resolves vendor API credentials, backed by the
// Setting entity rather than the environment.
type CredentialSource interface {
	Credential(vendor string) (string, bool)
}
