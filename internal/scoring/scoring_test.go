package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(f float64) *float64 { return &f }
func sp(s string) *string  { return &s }

func TestLetterGradeBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "A+", LetterGrade(90, cfg))
	assert.Equal(t, "A", LetterGrade(80, cfg))
	assert.Equal(t, "B+", LetterGrade(70, cfg))
	assert.Equal(t, "B", LetterGrade(60, cfg))
	assert.Equal(t, "C", LetterGrade(50, cfg))
	assert.Equal(t, "D", LetterGrade(10, cfg))
}

func TestRiskScoreAbsentMetricsDefaultToMidpoint(t *testing.T) {
	assert.Equal(t, 50.0, RiskScore(Metrics{}, DefaultConfig()))
}

func TestValuationScoreUndefinedPEDefaultsTo40(t *testing.T) {
	cfg := DefaultConfig()
	score := valuationScore(Metrics{}, cfg)
	assert.Equal(t, 40.0, score)

	neg := -5.0
	score = valuationScore(Metrics{TrailingPE: &neg}, cfg)
	assert.Equal(t, 40.0, score)
}

func TestComputeSectorBucketExplicitOverrideWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SymbolSectorOverride = map[string]string{"AAPL": string(BucketMegaTech)}
	bucket := ComputeSectorBucket("AAPL", Metrics{Sector: sp("Healthcare")}, cfg)
	assert.Equal(t, BucketMegaTech, bucket)
}

func TestComputeSectorBucketTechPromotedByMegaCap(t *testing.T) {
	cfg := DefaultConfig()
	bucket := ComputeSectorBucket("XYZ", Metrics{
		Sector:    sp("Technology"),
		MarketCap: fp(2e12),
	}, cfg)
	assert.Equal(t, BucketMegaTech, bucket)
}

func TestStyleBuckets(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, RiskStyleSteadySafe, Style(80, cfg))
	assert.Equal(t, RiskStyleModerateBalanced, Style(50, cfg))
	assert.Equal(t, RiskStyleRiskyWild, Style(10, cfg))
}
