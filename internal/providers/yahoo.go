package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// YahooProvider fetches quotes and history from the Yahoo Finance
// public query API. It needs no credential.
type YahooProvider struct {
	client *http.Client
	log    zerolog.Logger
}

// NewYahooProvider builds the Yahoo client.
func NewYahooProvider(log zerolog.Logger) *YahooProvider {
	return &YahooProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.With().Str("provider", "yahoo").Logger(),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

func (p *YahooProvider) quote(symbol string) (map[string]interface{}, Outcome, string) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,regularMarketPrice,currentPrice,industry,sector,"+
		"trailingPE,forwardPE,pegRatio,priceToBook,revenueGrowth,profitMargins,"+
		"returnOnEquity,debtToEquity,marketCap,dividendYield,beta,longBusinessSummary")

	reqURL := "https://query1.finance.yahoo.com/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, Failed, err.Error()
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Failed, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, Failed, fmt.Sprintf("yahoo returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Failed, err.Error()
	}

	var parsed yahooQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, Failed, err.Error()
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, Failed, fmt.Sprintf("%v", parsed.QuoteResponse.Error)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, Empty, "no quote data"
	}
	return parsed.QuoteResponse.Result[0], Found, ""
}

func (p *YahooProvider) FetchInfo(symbol string) InfoResult {
	m, outcome, reason := p.quote(symbol)
	if outcome != Found {
		return InfoResult{Outcome: outcome, Reason: reason}
	}

	info := Info{
		Symbol:        symbol,
		PERatio:       extractFloat(m, "trailingPE"),
		ForwardPE:     extractFloat(m, "forwardPE"),
		PEGRatio:      extractFloat(m, "pegRatio"),
		PriceToBook:   extractFloat(m, "priceToBook"),
		RevenueGrowth: extractFloat(m, "revenueGrowth"),
		ProfitMargin:  extractFloat(m, "profitMargins"),
		ROE:           extractFloat(m, "returnOnEquity"),
		DebtToEquity:  extractFloat(m, "debtToEquity"),
		MarketCap:     extractFloat(m, "marketCap"),
		DividendYield: extractFloat(m, "dividendYield"),
		Beta:          extractFloat(m, "beta"),
		Sector:        extractString(m, "sector"),
		Industry:      extractString(m, "industry"),
		Description:   extractString(m, "longBusinessSummary"),
	}
	if info.PERatio == nil {
		return InfoResult{Outcome: Empty, Reason: "sentinel field pe_ratio absent"}
	}
	return InfoResult{Outcome: Found, Info: info}
}

func (p *YahooProvider) FetchCurrentPrice(symbol string) PriceResult {
	m, outcome, reason := p.quote(symbol)
	if outcome != Found {
		return PriceResult{Outcome: outcome, Reason: reason}
	}

	price := extractFloat(m, "currentPrice")
	if price == nil {
		price = extractFloat(m, "regularMarketPrice")
	}
	if price == nil || *price <= 0 {
		return PriceResult{Outcome: Empty, Reason: "no current price"}
	}
	return PriceResult{Outcome: Found, Price: price}
}

// FetchHistorical is not implemented against the lightweight quote
// endpoint; Yahoo's chart API requires a separate request shape. It
// reports Empty so the registry falls through to the next vendor.
func (p *YahooProvider) FetchHistorical(symbol string, period Period) HistoricalResult {
	return HistoricalResult{Outcome: Empty, Reason: "historical bars unsupported by this endpoint"}
}

// FetchIndicators: Yahoo's public quote API carries no precomputed
// technical indicators.
func (p *YahooProvider) FetchIndicators(symbol string) IndicatorResult {
	return IndicatorResult{Outcome: Empty, Reason: "yahoo does not supply indicators"}
}
