// Package scoring maps a metric bundle to a risk score, overall score,
// letter grade, and sector bucket, as used to enrich Instrument rows
// Every rule here is pure and driven by a configuration struct so
// scoring is parameterizable without code changes, per spec's
// "Scoring configuration keys" glossary.
package scoring

import "strings"

// Metrics is the bundle of optional metrics scoring is computed from.
type Metrics struct {
	Beta             *float64
	DividendYield    *float64
	DebtToEquity     *float64
	ProfitMargins    *float64
	RevenueGrowth    *float64
	ROE              *float64
	ForwardPE        *float64
	TrailingPE       *float64
	MarketCap        *float64
	Sector           *string
	Industry         *string
	Description      *string
}

// Config holds the tunable thresholds, with spec defaults.
type Config struct {
	BetaBaseline         float64
	BetaSensitivity      float64
	DivYieldTarget       float64
	DebtToEquityHealthy  float64
	DebtSensitivity      float64
	MarginSensitivity    float64
	PEFairValue          float64
	PESensitivity        float64
	RiskSafeThreshold    float64
	RiskModerateThreshold float64
	GradeAPlus           float64
	GradeA               float64
	GradeBPlus           float64
	GradeB               float64
	GradeC               float64
	MegaCapThreshold     float64
	SymbolSectorOverride map[string]string
}

// DefaultConfig returns spec's documented default thresholds.
func DefaultConfig() Config {
	return Config{
		BetaBaseline:          1.0,
		BetaSensitivity:       50,
		DivYieldTarget:        4.0,
		DebtToEquityHealthy:   1.0,
		DebtSensitivity:       25,
		MarginSensitivity:     5,
		PEFairValue:           20,
		PESensitivity:         2,
		RiskSafeThreshold:     70,
		RiskModerateThreshold: 40,
		GradeAPlus:            90,
		GradeA:                80,
		GradeBPlus:            70,
		GradeB:                60,
		GradeC:                50,
		MegaCapThreshold:      1e12,
		SymbolSectorOverride:  map[string]string{},
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RiskScore returns the 0..100 risk score (higher = safer): a weighted
// average of four clamped sub-scores. Absent metrics contribute nothing
// and are excluded from the weighted average's normalization.
func RiskScore(m Metrics, cfg Config) float64 {
	type component struct {
		weight float64
		value  float64
	}
	var components []component

	if m.Beta != nil {
		penalty := (*m.Beta - cfg.BetaBaseline) * cfg.BetaSensitivity
		components = append(components, component{0.3, clamp(100 - penalty)})
	}
	if m.DividendYield != nil {
		dy := *m.DividendYield
		if dy > 1 {
			dy = dy / 100
		}
		penalty := (cfg.DivYieldTarget - dy*100)
		components = append(components, component{0.2, clamp(100 - penalty)})
	}
	if m.DebtToEquity != nil {
		penalty := (*m.DebtToEquity - cfg.DebtToEquityHealthy) * cfg.DebtSensitivity
		components = append(components, component{0.3, clamp(100 - penalty)})
	}
	if m.ProfitMargins != nil {
		penalty := (0.2 - *m.ProfitMargins) * 100 * cfg.MarginSensitivity / 10
		components = append(components, component{0.2, clamp(100 - penalty)})
	}

	if len(components) == 0 {
		return 50
	}

	var weightedSum, weightTotal float64
	for _, c := range components {
		weightedSum += c.weight * c.value
		weightTotal += c.weight
	}
	return weightedSum / weightTotal
}

func valuationScore(m Metrics, cfg Config) float64 {
	pe := m.ForwardPE
	if pe == nil {
		pe = m.TrailingPE
	}
	if pe == nil || *pe <= 0 {
		return 40
	}
	diff := *pe - cfg.PEFairValue
	if diff < 0 {
		diff = -diff
	}
	return clamp(100 - diff*cfg.PESensitivity)
}

func growthScore(m Metrics) float64 {
	if m.RevenueGrowth == nil {
		return 50
	}
	return clamp(50 + *m.RevenueGrowth*200)
}

func qualityScore(m Metrics) float64 {
	var roeScore, marginScore float64 = 50, 50
	if m.ROE != nil {
		roeScore = clamp(*m.ROE * 300)
	}
	if m.ProfitMargins != nil {
		marginScore = clamp(*m.ProfitMargins * 300)
	}
	return (roeScore + marginScore) / 2
}

// OverallScore is the equal-weighted (25% each) blend of valuation,
// growth, quality, and risk.
func OverallScore(m Metrics, cfg Config) float64 {
	return 0.25*valuationScore(m, cfg) +
		0.25*growthScore(m) +
		0.25*qualityScore(m) +
		0.25*RiskScore(m, cfg)
}

// LetterGrade maps an overall score to a letter grade.
func LetterGrade(score float64, cfg Config) string {
	switch {
	case score >= cfg.GradeAPlus:
		return "A+"
	case score >= cfg.GradeA:
		return "A"
	case score >= cfg.GradeBPlus:
		return "B+"
	case score >= cfg.GradeB:
		return "B"
	case score >= cfg.GradeC:
		return "C"
	default:
		return "D"
	}
}

// RiskStyle labels the overall risk posture.
type RiskStyle string

const (
	RiskStyleSteadySafe       RiskStyle = "STEADY & SAFE"
	RiskStyleModerateBalanced RiskStyle = "MODERATE & BALANCED"
	RiskStyleRiskyWild        RiskStyle = "RISKY & WILD"
)

// Style classifies a risk score into a risk style bucket.
func Style(riskScore float64, cfg Config) RiskStyle {
	switch {
	case riskScore >= cfg.RiskSafeThreshold:
		return RiskStyleSteadySafe
	case riskScore >= cfg.RiskModerateThreshold:
		return RiskStyleModerateBalanced
	default:
		return RiskStyleRiskyWild
	}
}

// SectorBucket is one of the ten named buckets.
type SectorBucket string

const (
	BucketMegaTech              SectorBucket = "MEGA TECH"
	BucketNewEconomy            SectorBucket = "NEW ECONOMY"
	BucketOldEconomy            SectorBucket = "OLD ECONOMY"
	BucketMaterialsMining       SectorBucket = "MATERIALS & MINING"
	BucketConsumerFavorites     SectorBucket = "CONSUMER FAVORITES"
	BucketHealthcare            SectorBucket = "HEALTHCARE"
	BucketFinancialGiants       SectorBucket = "FINANCIAL GIANTS"
	BucketInfrastructure        SectorBucket = "INFRASTRUCTURE"
	BucketRealEstate            SectorBucket = "REAL ESTATE"
	BucketEntertainmentMedia    SectorBucket = "ENTERTAINMENT & MEDIA"
)

var sectorRules = map[string]SectorBucket{
	"technology":    BucketNewEconomy,
	"communication":  BucketEntertainmentMedia,
	"consumer cyclical":  BucketConsumerFavorites,
	"consumer defensive": BucketConsumerFavorites,
	"healthcare":    BucketHealthcare,
	"financial":     BucketFinancialGiants,
	"financials":    BucketFinancialGiants,
	"industrials":   BucketInfrastructure,
	"utilities":     BucketInfrastructure,
	"energy":        BucketMaterialsMining,
	"basic materials": BucketMaterialsMining,
	"materials":     BucketMaterialsMining,
	"real estate":   BucketRealEstate,
}

var keywordBuckets = map[string]SectorBucket{
	"software":     BucketNewEconomy,
	"semiconductor": BucketMegaTech,
	"internet":     BucketNewEconomy,
	"bank":         BucketFinancialGiants,
	"insurance":    BucketFinancialGiants,
	"oil":          BucketMaterialsMining,
	"gas":          BucketMaterialsMining,
	"mining":       BucketMaterialsMining,
	"media":        BucketEntertainmentMedia,
	"entertainment": BucketEntertainmentMedia,
	"retail":       BucketConsumerFavorites,
	"pharma":       BucketHealthcare,
	"biotech":      BucketHealthcare,
	"reit":         BucketRealEstate,
	"utility":      BucketInfrastructure,
}

// ComputeSectorBucket resolves a symbol to its bucket: explicit
// per-symbol override first, then a sector rule, then a keyword-count
// fallback over industry/description. A Technology company whose
// market cap exceeds the configured mega-cap threshold is promoted from
// NEW ECONOMY to MEGA TECH.
func ComputeSectorBucket(symbol string, m Metrics, cfg Config) SectorBucket {
	if override, ok := cfg.SymbolSectorOverride[strings.ToUpper(symbol)]; ok {
		return SectorBucket(override)
	}

	if m.Sector != nil {
		key := strings.ToLower(strings.TrimSpace(*m.Sector))
		if bucket, ok := sectorRules[key]; ok {
			if key == "technology" && m.MarketCap != nil && *m.MarketCap > cfg.MegaCapThreshold {
				return BucketMegaTech
			}
			return bucket
		}
	}

	haystack := strings.ToLower(valueOr(m.Industry, "") + " " + valueOr(m.Description, ""))
	best := BucketOldEconomy
	bestCount := 0
	for kw, bucket := range keywordBuckets {
		if count := strings.Count(haystack, kw); count > bestCount {
			best = bucket
			bestCount = count
		}
	}
	return best
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
