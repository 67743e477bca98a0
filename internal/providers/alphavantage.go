package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// AlphaVantageProvider fetches fundamental overviews and technical
// indicators from Alpha Vantage.
type AlphaVantageProvider struct {
	client *http.Client
	creds  CredentialSource
	log    zerolog.Logger
}

func NewAlphaVantageProvider(creds CredentialSource, log zerolog.Logger) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		creds:  creds,
		log:    log.With().Str("provider", "alphavantage").Logger(),
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) apiKey() (string, bool) {
	return p.creds.Credential("alphavantage")
}

func (p *AlphaVantageProvider) get(function, symbol string, extra url.Values) (map[string]interface{}, Outcome, string) {
	key, ok := p.apiKey()
	if !ok {
		return nil, Failed, "missing alphavantage credential"
	}

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", key)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	reqURL := "https://www.alphavantage.co/query?" + params.Encode()
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, Failed, err.Error()
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Failed, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, Failed, fmt.Sprintf("alphavantage returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Failed, err.Error()
	}

	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, Failed, err.Error()
	}
	if len(m) == 0 {
		return nil, Empty, "empty response"
	}
	if note, ok := m["Note"]; ok {
		return nil, Failed, fmt.Sprintf("rate limited: %v", note)
	}
	return m, Found, ""
}

func parseAVFloat(m map[string]interface{}, key string) *float64 {
	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return extractFloat(m, key)
	}
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (p *AlphaVantageProvider) FetchInfo(symbol string) InfoResult {
	m, outcome, reason := p.get("OVERVIEW", symbol, nil)
	if outcome != Found {
		return InfoResult{Outcome: outcome, Reason: reason}
	}

	info := Info{
		Symbol:        symbol,
		PERatio:       parseAVFloat(m, "PERatio"),
		ForwardPE:     parseAVFloat(m, "ForwardPE"),
		PEGRatio:      parseAVFloat(m, "PEGRatio"),
		PriceToBook:   parseAVFloat(m, "PriceToBookRatio"),
		RevenueGrowth: parseAVFloat(m, "QuarterlyRevenueGrowthYOY"),
		ProfitMargin:  parseAVFloat(m, "ProfitMargin"),
		ROE:           parseAVFloat(m, "ReturnOnEquityTTM"),
		MarketCap:     parseAVFloat(m, "MarketCapitalization"),
		DividendYield: parseAVFloat(m, "DividendYield"),
		Beta:          parseAVFloat(m, "Beta"),
		Sector:        extractString(m, "Sector"),
		Industry:      extractString(m, "Industry"),
		Description:   extractString(m, "Description"),
	}
	if info.PERatio == nil {
		return InfoResult{Outcome: Empty, Reason: "sentinel field pe_ratio absent"}
	}
	return InfoResult{Outcome: Found, Info: info}
}

func (p *AlphaVantageProvider) FetchCurrentPrice(symbol string) PriceResult {
	m, outcome, reason := p.get("GLOBAL_QUOTE", symbol, nil)
	if outcome != Found {
		return PriceResult{Outcome: outcome, Reason: reason}
	}
	quote, ok := m["Global Quote"].(map[string]interface{})
	if !ok || len(quote) == 0 {
		return PriceResult{Outcome: Empty, Reason: "no quote payload"}
	}
	price := parseAVFloat(quote, "05. price")
	if price == nil || *price <= 0 {
		return PriceResult{Outcome: Empty, Reason: "no price"}
	}
	return PriceResult{Outcome: Found, Price: price}
}

func (p *AlphaVantageProvider) FetchIndicators(symbol string) IndicatorResult {
	m, outcome, reason := p.get("RSI", symbol, url.Values{
		"interval":    {"daily"},
		"time_period": {"14"},
		"series_type": {"close"},
	})
	if outcome != Found {
		return IndicatorResult{Outcome: outcome, Reason: reason}
	}

	series, ok := m["Technical Analysis: RSI"].(map[string]interface{})
	if !ok || len(series) == 0 {
		return IndicatorResult{Outcome: Empty, Reason: "no rsi series"}
	}

	var latest *float64
	for _, v := range series {
		point, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		latest = parseAVFloat(point, "RSI")
		break
	}
	if latest == nil {
		return IndicatorResult{Outcome: Empty, Reason: "sentinel field rsi absent"}
	}
	return IndicatorResult{Outcome: Found, Indicators: IndicatorSet{RSI: latest}}
}

// FetchHistorical is not implemented: Alpha Vantage is preferred for
// indicators, not bars, per the vendor preference order.
func (p *AlphaVantageProvider) FetchHistorical(symbol string, period Period) HistoricalResult {
	return HistoricalResult{Outcome: Empty, Reason: "historical bars not implemented for alphavantage"}
}
