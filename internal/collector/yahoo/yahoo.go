// Package yahoo fetches market data from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/stockdash/stockdash/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches stock symbols like AAPL, MSFT, BRK.B, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9\-^=]{1,10}(\.[A-Za-z]{1,4})?$`)

var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

var validIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "1d": true, "1wk": true, "1mo": true,
}

// Client fetches price history and quotes from Yahoo Finance.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a Yahoo client with a 10 second request timeout.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.WrapError(core.ErrInvalidParameter, fmt.Errorf("symbol cannot be empty"))
	}
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrInvalidParameter, fmt.Errorf("invalid symbol format: %s", symbol))
	}
	return nil
}

// FetchHistory retrieves OHLCV bars for a look-back period such as "6mo" at
// the given interval. Bars with missing quotes are skipped.
func (c *Client) FetchHistory(ctx context.Context, symbol, period, interval string) (core.Series, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	if period == "" {
		period = "6mo"
	}
	if interval == "" {
		interval = "1d"
	}
	if !validPeriods[period] {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("unsupported period: %s", period))
	}
	if !validIntervals[interval] {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("unsupported interval: %s", interval))
	}

	url := fmt.Sprintf("%s/%s?interval=%s&range=%s", c.baseURL, symbol, interval, period)
	result, err := c.getChart(ctx, url, symbol)
	if err != nil {
		return nil, err
	}

	quotes := result.Indicators.Quote
	if len(result.Timestamp) == 0 || len(quotes) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no bars returned for %s", symbol))
	}

	q := quotes[0]
	series := make(core.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) ||
			q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue // skip bars with missing data
		}
		var volume int64
		if i < len(q.Volume) && q.Volume[i] != nil {
			volume = int64(*q.Volume[i])
		}
		series = append(series, core.Bar{
			Time:   time.Unix(int64(ts), 0).UTC(),
			Open:   *q.Open[i],
			High:   *q.High[i],
			Low:    *q.Low[i],
			Close:  *q.Close[i],
			Volume: volume,
		})
	}
	if len(series) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no usable bars for %s", symbol))
	}
	return series, nil
}

// FetchQuote retrieves the latest market price for a symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, symbol)
	result, err := c.getChart(ctx, url, symbol)
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no market price for %s", symbol))
	}

	return &core.Quote{
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		Volume: int64(meta.RegularMarketVolume),
		Time:   time.Unix(int64(meta.RegularMarketTime), 0).UTC(),
		Source: "yahoo",
	}, nil
}

func (c *Client) getChart(ctx context.Context, url, symbol string) (*chartResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("symbol %s", symbol))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("decoding response: %w", err))
	}

	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("yahoo error for %s: %s", symbol, result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no data for symbol: %s", symbol))
	}
	return &result.Chart.Result[0], nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol              string  `json:"symbol"`
	RegularMarketPrice  float64 `json:"regularMarketPrice"`
	RegularMarketVolume int     `json:"regularMarketVolume"`
	RegularMarketTime   int     `json:"regularMarketTime"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
