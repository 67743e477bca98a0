package fundamentals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }
func sptr(s string) *string { return &s }

func TestQualityScoreAllTopBucketsSumTo90(t *testing.T) {
	info := Info{
		PERatio:       ptr(10),
		MarketCap:     ptr(20_000_000_000),
		Beta:          ptr(0.5),
		DividendYield: ptr(2.5),
		Sector:        sptr("Technology"),
	}
	assert.Equal(t, 90.0, QualityScore(info))
}

func TestQualityScoreAbsentFieldsContributeNothing(t *testing.T) {
	info := Info{}
	assert.Equal(t, 0.0, QualityScore(info))
}

func TestDividendYieldNormalization(t *testing.T) {
	// Raw value > 1 treated as a percentage.
	info := Info{DividendYield: ptr(3.2)}
	assert.True(t, normalizedDividendYield(*info.DividendYield) < 1)
}

func TestIndustryMoatPromotedByMarketCap(t *testing.T) {
	info := Info{
		Sector:    sptr("Energy"),
		MarketCap: ptr(60_000_000_000),
	}
	assert.Equal(t, MoatModerate, IndustryMoatStrength(info))
}

func TestIndustryMoatBaseSectorMapping(t *testing.T) {
	info := Info{Sector: sptr("Technology")}
	assert.Equal(t, MoatStrong, IndustryMoatStrength(info))
}

func TestMeetsValuationRequiresPositivePE(t *testing.T) {
	t1 := DefaultThresholds()
	assert.False(t, MeetsValuation(Info{}, t1))
	assert.False(t, MeetsValuation(Info{PERatio: ptr(-5)}, t1))
	assert.True(t, MeetsValuation(Info{PERatio: ptr(20)}, t1))
}

func TestHasFundamentalShift(t *testing.T) {
	prev := Info{PERatio: ptr(40), MarketCap: ptr(100_000_000)}
	curr := Info{PERatio: ptr(10), MarketCap: ptr(20_000_000_000), Beta: ptr(0.5), DividendYield: ptr(2), Sector: sptr("Technology")}
	assert.True(t, HasFundamentalShift(prev, curr))
}
