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

// FMPProvider fetches fundamental info from Financial Modeling Prep.
type FMPProvider struct {
	client  *http.Client
	creds   CredentialSource
	log     zerolog.Logger
}

func NewFMPProvider(creds CredentialSource, log zerolog.Logger) *FMPProvider {
	return &FMPProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		creds:  creds,
		log:    log.With().Str("provider", "fmp").Logger(),
	}
}

func (p *FMPProvider) Name() string { return "fmp" }

func (p *FMPProvider) apiKey() (string, bool) {
	return p.creds.Credential("fmp")
}

func (p *FMPProvider) FetchInfo(symbol string) InfoResult {
	key, ok := p.apiKey()
	if !ok {
		return InfoResult{Outcome: Failed, Reason: "missing fmp credential"}
	}

	params := url.Values{}
	params.Set("apikey", key)
	reqURL := fmt.Sprintf("https://financialmodelingprep.com/api/v3/profile/%s?%s", symbol, params.Encode())

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return InfoResult{Outcome: Failed, Reason: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return InfoResult{Outcome: Failed, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return InfoResult{Outcome: Failed, Reason: fmt.Sprintf("fmp returned status %d: %s", resp.StatusCode, string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return InfoResult{Outcome: Failed, Reason: err.Error()}
	}

	var profiles []map[string]interface{}
	if err := json.Unmarshal(body, &profiles); err != nil {
		return InfoResult{Outcome: Failed, Reason: err.Error()}
	}
	if len(profiles) == 0 {
		return InfoResult{Outcome: Empty, Reason: "no profile data"}
	}

	m := profiles[0]
	info := Info{
		Symbol:        symbol,
		PERatio:       extractFloat(m, "pe"),
		MarketCap:     extractFloat(m, "mktCap"),
		Beta:          extractFloat(m, "beta"),
		DividendYield: extractFloat(m, "lastDiv"),
		Sector:        extractString(m, "sector"),
		Industry:      extractString(m, "industry"),
		Description:   extractString(m, "description"),
	}
	if info.PERatio == nil {
		return InfoResult{Outcome: Empty, Reason: "sentinel field pe_ratio absent"}
	}
	return InfoResult{Outcome: Found, Info: info}
}

func (p *FMPProvider) FetchCurrentPrice(symbol string) PriceResult {
	key, ok := p.apiKey()
	if !ok {
		return PriceResult{Outcome: Failed, Reason: "missing fmp credential"}
	}

	params := url.Values{}
	params.Set("apikey", key)
	reqURL := fmt.Sprintf("https://financialmodelingprep.com/api/v3/quote-short/%s?%s", symbol, params.Encode())

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return PriceResult{Outcome: Failed, Reason: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return PriceResult{Outcome: Failed, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return PriceResult{Outcome: Failed, Reason: fmt.Sprintf("fmp returned status %d: %s", resp.StatusCode, string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PriceResult{Outcome: Failed, Reason: err.Error()}
	}

	var quotes []map[string]interface{}
	if err := json.Unmarshal(body, &quotes); err != nil {
		return PriceResult{Outcome: Failed, Reason: err.Error()}
	}
	if len(quotes) == 0 {
		return PriceResult{Outcome: Empty, Reason: "no quote data"}
	}

	price := extractFloat(quotes[0], "price")
	if price == nil || *price <= 0 {
		return PriceResult{Outcome: Empty, Reason: "no price"}
	}
	return PriceResult{Outcome: Found, Price: price}
}

// FetchHistorical is not offered on the free FMP tier this client
// targets; callers fall through to the next vendor.
func (p *FMPProvider) FetchHistorical(symbol string, period Period) HistoricalResult {
	return HistoricalResult{Outcome: Empty, Reason: "historical bars not implemented for fmp"}
}

// FetchIndicators: FMP's technical-indicator endpoint is a paid add-on
// not wired here.
func (p *FMPProvider) FetchIndicators(symbol string) IndicatorResult {
	return IndicatorResult{Outcome: Empty, Reason: "fmp indicators not implemented"}
}
