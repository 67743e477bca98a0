package providers

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	name  string
	price PriceResult
}

func (f *fakeProvider) Name() string                                      { return f.name }
func (f *fakeProvider) FetchInfo(symbol string) InfoResult                 { return InfoResult{Outcome: Empty} }
func (f *fakeProvider) FetchCurrentPrice(symbol string) PriceResult        { return f.price }
func (f *fakeProvider) FetchHistorical(symbol string, p Period) HistoricalResult {
	return HistoricalResult{Outcome: Empty}
}
func (f *fakeProvider) FetchIndicators(symbol string) IndicatorResult { return IndicatorResult{Outcome: Empty} }

func TestRegistryFallsThroughOnEmpty(t *testing.T) {
	first := &fakeProvider{name: "first", price: PriceResult{Outcome: Empty}}
	second := &fakeProvider{name: "second", price: PriceResult{Outcome: Found, Price: fPtr(42)}}

	r := &Registry{
		priceOrder: []Provider{first, second},
		log:        zerolog.Nop(),
	}

	res := r.FetchCurrentPrice("AAPL")
	assert.Equal(t, Found, res.Outcome)
	assert.Equal(t, 42.0, *res.Price)
}

func TestRegistryFallsThroughOnFailed(t *testing.T) {
	first := &fakeProvider{name: "first", price: PriceResult{Outcome: Failed, Reason: "timeout"}}
	second := &fakeProvider{name: "second", price: PriceResult{Outcome: Found, Price: fPtr(10)}}

	r := &Registry{
		priceOrder: []Provider{first, second},
		log:        zerolog.Nop(),
	}

	res := r.FetchCurrentPrice("AAPL")
	assert.Equal(t, Found, res.Outcome)
}

func TestRegistryTotalMissReturnsLastOutcomeNotError(t *testing.T) {
	first := &fakeProvider{name: "first", price: PriceResult{Outcome: Failed, Reason: "down"}}
	second := &fakeProvider{name: "second", price: PriceResult{Outcome: Empty}}

	r := &Registry{
		priceOrder: []Provider{first, second},
		log:        zerolog.Nop(),
	}

	res := r.FetchCurrentPrice("AAPL")
	assert.Equal(t, Empty, res.Outcome)
}

func fPtr(f float64) *float64 { return &f }
