// Package fundamentals derives quality/conviction/moat/valuation
// booleans from a provider "info" payload. Every metric is optional —
// absence means "do not contribute", never "treat as zero".
package fundamentals

import "strings"

// Info is the normalized subset of a provider info payload this package
// consumes. Fields are pointers so an absent value is distinguishable
// from zero.
type Info struct {
	PERatio            *float64
	ForwardPE          *float64
	MarketCap          *float64
	Beta               *float64
	DividendYield      *float64
	Sector             *string
	RevenueGrowth      *float64
	ROE                *float64
	DebtToEquity       *float64
	ProfitMargin       *float64
}

// normalizedDividendYield treats a raw value > 1 as a percentage.
func normalizedDividendYield(raw float64) float64 {
	if raw > 1 {
		return raw / 100
	}
	return raw
}

// QualityScore computes the 0..100 quality score from bucketed additive
// contributions, capped at 100.
func QualityScore(info Info) float64 {
	var score float64

	if info.PERatio != nil {
		switch {
		case *info.PERatio < 15:
			score += 25
		case *info.PERatio < 25:
			score += 15
		case *info.PERatio < 40:
			score += 5
		}
	}

	if info.MarketCap != nil {
		switch {
		case *info.MarketCap > 10_000_000_000:
			score += 25
		case *info.MarketCap > 2_000_000_000:
			score += 15
		case *info.MarketCap > 300_000_000:
			score += 10
		}
	}

	if info.Beta != nil {
		switch {
		case *info.Beta < 0.8:
			score += 20
		case *info.Beta < 1.2:
			score += 15
		case *info.Beta < 1.5:
			score += 10
		}
	}

	if info.DividendYield != nil && normalizedDividendYield(*info.DividendYield) > 0 {
		score += 10
	}

	if info.Sector != nil && strings.TrimSpace(*info.Sector) != "" {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// ConvictionScore computes the 0..100 conviction score: a blend of
// quality plus growth/PE/ROE buckets, capped at 100.
func ConvictionScore(info Info) float64 {
	score := 0.4 * QualityScore(info)

	if info.RevenueGrowth != nil {
		switch {
		case *info.RevenueGrowth >= 0.2:
			score += 20
		case *info.RevenueGrowth >= 0.1:
			score += 15
		case *info.RevenueGrowth >= 0.05:
			score += 10
		}
	}

	if info.PERatio != nil {
		switch {
		case *info.PERatio < 15:
			score += 20
		case *info.PERatio < 25:
			score += 15
		case *info.PERatio < 35:
			score += 10
		}
	}

	if info.ROE != nil {
		switch {
		case *info.ROE > 0.2:
			score += 20
		case *info.ROE > 0.15:
			score += 15
		case *info.ROE > 0.10:
			score += 10
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// MoatStrength is the industry moat classification.
type MoatStrength string

const (
	MoatStrong   MoatStrength = "strong"
	MoatModerate MoatStrength = "moderate"
	MoatWeak     MoatStrength = "weak"
)

var moatBase = map[string]MoatStrength{
	"Technology": MoatStrong,
	"Healthcare": MoatStrong,
	"Defensive":  MoatStrong,
	"Utilities":  MoatStrong,
	"Comms":      MoatStrong,

	"Industrials": MoatModerate,
	"Cyclical":    MoatModerate,
	"Financials":  MoatModerate,

	"Energy":     MoatWeak,
	"Materials":  MoatWeak,
	"RealEstate": MoatWeak,
}

// IndustryMoatStrength classifies the moat strength from sector, then
// promotes it one tier if market cap exceeds $50B.
func IndustryMoatStrength(info Info) MoatStrength {
	base := MoatModerate
	if info.Sector != nil {
		if b, ok := moatBase[*info.Sector]; ok {
			base = b
		}
	}

	if info.MarketCap != nil && *info.MarketCap > 50_000_000_000 {
		base = promote(base)
	}

	return base
}

func promote(m MoatStrength) MoatStrength {
	switch m {
	case MoatWeak:
		return MoatModerate
	case MoatModerate:
		return MoatStrong
	default:
		return MoatStrong
	}
}

// Thresholds holds the strategy-parameterized thresholds for the
// boolean predicates below.
type Thresholds struct {
	MinQualityScore float64 // default 70
	MinROE          float64 // default 0.15
	MinGrowth       float64 // default 0.1
	MaxPE           float64 // default 25
}

// DefaultThresholds returns the default fundamental thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinQualityScore: 70,
		MinROE:          0.15,
		MinGrowth:       0.1,
		MaxPE:           25,
	}
}

// MeetsQuality reports whether the quality score clears the threshold.
func MeetsQuality(info Info, t Thresholds) bool {
	return QualityScore(info) > t.MinQualityScore
}

// MeetsROE reports whether ROE clears the threshold. Absent ROE never
// meets the bar.
func MeetsROE(info Info, t Thresholds) bool {
	return info.ROE != nil && *info.ROE > t.MinROE
}

// MeetsGrowth reports whether revenue growth clears the threshold.
func MeetsGrowth(info Info, t Thresholds) bool {
	return info.RevenueGrowth != nil && *info.RevenueGrowth > t.MinGrowth
}

// MeetsValuation reports whether the (forward, else trailing) PE is
// positive and at or below the threshold.
func MeetsValuation(info Info, t Thresholds) bool {
	pe := info.ForwardPE
	if pe == nil {
		pe = info.PERatio
	}
	return pe != nil && *pe > 0 && *pe <= t.MaxPE
}

// HasFundamentalShift compares two snapshots of the same security and
// reports whether the quality score moved enough to be considered a
// shift (more than 15 points either direction).
func HasFundamentalShift(previous, current Info) bool {
	return QualityScore(current)-QualityScore(previous) > 15 ||
		QualityScore(previous)-QualityScore(current) > 15
}
