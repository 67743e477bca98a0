// Package indicators implements the technical indicator library: pure
// functions over an ordered close-price series, no I/O, no provider
// dependency. Every indicator here is hand-rolled to an exact
// recurrence (EMA seeded from the first sample, RSI as a simple
// average of the trailing window, MACD signal fallback below 9
// samples) rather than delegated to a general-purpose TA library,
// since the contract is load-bearing for the composite score and must
// match precisely, not approximately.
package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SMA returns the simple moving average of the last `window` closes, or
// nil if fewer samples are available.
func SMA(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}
	slice := closes[len(closes)-window:]
	v := stat.Mean(slice, nil)
	return &v
}

// EMA returns the exponential moving average over the whole series,
// seeded with the first sample and recursed with alpha = 2/(window+1).
func EMA(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(window) + 1.0)
	e := closes[0]
	for _, p := range closes[1:] {
		e += alpha * (p - e)
	}
	return &e
}

// emaSeries returns the full EMA series (one value per input sample),
// used internally by MACD to reconstruct historical MACD-line samples.
func emaSeries(closes []float64, window int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(window) + 1.0)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = out[i-1] + alpha*(closes[i]-out[i-1])
	}
	return out
}

// RSI computes the Relative Strength Index over the given period
// (typically 14) as a simple average of the last `period` gains and
// losses (not Wilder-smoothed over the whole series). Returns nil if
// there are not enough samples. A zero average loss yields exactly
// 100, whether or not there was any gain either.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}
	window := closes[len(closes)-(period+1):]

	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - (100 / (1 + rs))
	return &v
}

// MACDResult is the line/signal/histogram triple.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACD computes line = EMA(12) - EMA(26), signal = EMA(9) of the MACD
// line, hist = line - signal. If fewer than 9 historical MACD samples
// are available, signal falls back to the current line value and the
// histogram becomes 0.
func MACD(closes []float64) *MACDResult {
	if len(closes) == 0 {
		return nil
	}

	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = ema12[i] - ema26[i]
	}

	line := macdSeries[len(macdSeries)-1]

	if len(macdSeries) < 9 {
		return &MACDResult{Line: line, Signal: line, Histogram: 0}
	}

	signalSeries := emaSeries(macdSeries, 9)
	signal := signalSeries[len(signalSeries)-1]

	return &MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
}

// BollingerResult holds the three Bollinger bands.
type BollingerResult struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// Bollinger computes middle = SMA(window), band width = k * population
// stddev of the window.
func Bollinger(closes []float64, window int, k float64) *BollingerResult {
	if window <= 0 || len(closes) < window {
		return nil
	}
	slice := closes[len(closes)-window:]
	middle := stat.Mean(slice, nil)
	sd := popStdDev(slice)
	width := k * sd
	return &BollingerResult{
		Middle: middle,
		Upper:  middle + width,
		Lower:  middle - width,
	}
}

// popStdDev computes the population (not sample) standard deviation
// used for Bollinger band width.
func popStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := stat.Mean(data, nil)
	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

// Volatility computes the annualized standard deviation of daily simple
// returns over the last `window` returns (the last window+1 closes).
func Volatility(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window+1 {
		return nil
	}
	slice := closes[len(closes)-(window+1):]
	returns := make([]float64, 0, window)
	for i := 1; i < len(slice); i++ {
		if slice[i-1] == 0 {
			continue
		}
		returns = append(returns, (slice[i]-slice[i-1])/slice[i-1])
	}
	if len(returns) == 0 {
		return nil
	}
	v := stat.StdDev(returns, nil) * math.Sqrt(252)
	return &v
}

// SupportResistance is the pivot-point ladder computed from a recent
// high/low/close window.
type SupportResistance struct {
	Pivot float64
	R1    float64
	R2    float64
	S1    float64
	S2    float64
}

// ComputeSupportResistance derives pivot levels from the recent-20 bar
// high H, low L, and the last close C.
func ComputeSupportResistance(highs, lows, closes []float64, window int) *SupportResistance {
	if window <= 0 || len(highs) < window || len(lows) < window || len(closes) == 0 {
		return nil
	}
	h := maxOf(highs[len(highs)-window:])
	l := minOf(lows[len(lows)-window:])
	c := closes[len(closes)-1]

	pivot := (h + l + c) / 3
	return &SupportResistance{
		Pivot: pivot,
		R1:    2*pivot - l,
		S1:    2*pivot - h,
		R2:    pivot + (h - l),
		S2:    pivot - (h - l),
	}
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Trend is the overall directional label.
type Trend string

const (
	TrendBullish  Trend = "BULLISH"
	TrendBearish  Trend = "BEARISH"
	TrendSideways Trend = "SIDEWAYS"
)

// ComputeTrend labels the trend from the current close against SMA20
// and SMA50.
func ComputeTrend(close float64, sma20, sma50 *float64) Trend {
	if sma20 == nil || sma50 == nil {
		return TrendSideways
	}
	if close > *sma20 && close > *sma50 {
		return TrendBullish
	}
	if close < *sma20 && close < *sma50 {
		return TrendBearish
	}
	return TrendSideways
}

// Bundle is the full set of indicators gathered for one decision cycle.
type Bundle struct {
	Close              float64
	SMA20              *float64
	SMA50              *float64
	SMA200             *float64
	EMA12              *float64
	EMA26              *float64
	RSI14              *float64
	MACD               *MACDResult
	Bollinger          *BollingerResult
	Volatility         *float64
	SupportResistance  *SupportResistance
	Trend              Trend
	Overbought         bool
	Oversold           bool
	GoldenCross        bool
	DeathCross         bool
	NearSupport        bool
	NearResistance     bool
}

// Compute builds the full indicator bundle from a close-price series
// (oldest first) and matching high/low series for support/resistance.
func Compute(closes, highs, lows []float64, rsiOversold, rsiOverbought float64) Bundle {
	b := Bundle{}
	if len(closes) == 0 {
		return b
	}
	b.Close = closes[len(closes)-1]
	b.SMA20 = SMA(closes, 20)
	b.SMA50 = SMA(closes, 50)
	b.SMA200 = SMA(closes, 200)
	b.EMA12 = EMA(closes, 12)
	b.EMA26 = EMA(closes, 26)
	b.RSI14 = RSI(closes, 14)
	b.MACD = MACD(closes)
	b.Bollinger = Bollinger(closes, 20, 2)
	b.Volatility = Volatility(closes, 20)
	b.SupportResistance = ComputeSupportResistance(highs, lows, closes, 20)
	b.Trend = ComputeTrend(b.Close, b.SMA20, b.SMA50)

	if b.RSI14 != nil {
		b.Overbought = *b.RSI14 >= rsiOverbought
		b.Oversold = *b.RSI14 <= rsiOversold
	}
	if b.SMA50 != nil && b.SMA200 != nil {
		b.GoldenCross = *b.SMA50 > *b.SMA200
		b.DeathCross = *b.SMA50 < *b.SMA200
	}
	if b.SupportResistance != nil && b.Close > 0 {
		if b.SupportResistance.S1 > 0 && math.Abs(b.Close-b.SupportResistance.S1)/b.SupportResistance.S1 <= 0.05 {
			b.NearSupport = true
		}
		if b.SupportResistance.R1 > 0 && math.Abs(b.Close-b.SupportResistance.R1)/b.SupportResistance.R1 <= 0.05 {
			b.NearResistance = true
		}
	}

	return b
}
