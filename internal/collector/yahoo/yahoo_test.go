package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/stockdash/internal/core"
)

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "MSFT", "BRK.B", "0700.HK", "^GSPC", "EURUSD=X", "BTC-USD"}
	for _, s := range valid {
		assert.NoError(t, validateSymbol(s), "symbol %s", s)
	}

	invalid := []string{"", "WAY_TOO_LONG_SYMBOL", "bad symbol", "a;drop"}
	for _, s := range invalid {
		err := validateSymbol(s)
		assert.True(t, errors.Is(err, core.ErrInvalidParameter), "symbol %q: got %v", s, err)
	}
}

// chartJSON builds a minimal chart payload with one quote block.
func chartJSON(timestamps []int64, closes []float64) string {
	ts, open, high, low, cls, vol := "", "", "", "", "", ""
	for i, t := range timestamps {
		if i > 0 {
			ts, open, high, low, cls, vol = ts+",", open+",", high+",", low+",", cls+",", vol+","
		}
		ts += fmt.Sprint(t)
		open += fmt.Sprint(closes[i])
		high += fmt.Sprint(closes[i])
		low += fmt.Sprint(closes[i])
		cls += fmt.Sprint(closes[i])
		vol += "1000"
	}
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"AAPL","regularMarketPrice":%f,"regularMarketVolume":1000,"regularMarketTime":%d},
		"timestamp":[%s],
		"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}
	}],"error":null}}`, closes[len(closes)-1], timestamps[len(timestamps)-1], ts, open, high, low, cls, vol)
}

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New()
	c.baseURL = srv.URL
	return c, srv
}

func TestFetchHistory(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	timestamps := []int64{base.Unix(), base.AddDate(0, 0, 1).Unix(), base.AddDate(0, 0, 2).Unix()}
	closes := []float64{185.5, 186.25, 184.0}

	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "AAPL")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartJSON(timestamps, closes))
	})
	defer srv.Close()

	series, err := c.FetchHistory(context.Background(), "AAPL", "", "")
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 185.5, series[0].Close)
	assert.Equal(t, int64(1000), series[0].Volume)
	assert.True(t, series[0].Time.Equal(base))
}

func TestFetchHistorySkipsNullBars(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAPL"},
			"timestamp":[1704153600,1704240000,1704326400],
			"indicators":{"quote":[{
				"open":[185.5,null,184.0],
				"high":[185.5,null,184.0],
				"low":[185.5,null,184.0],
				"close":[185.5,null,184.0],
				"volume":[1000,null,1200]
			}]}
		}],"error":null}}`)
	})
	defer srv.Close()

	series, err := c.FetchHistory(context.Background(), "AAPL", "6mo", "1d")
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestFetchHistorySkipsPartiallyNullBars(t *testing.T) {
	// Yahoo emits per-field nulls: a bar can carry a close but no high or
	// low. Any missing OHLC field drops the bar.
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAPL"},
			"timestamp":[1704153600,1704240000,1704326400],
			"indicators":{"quote":[{
				"open":[100.0,101.0,102.0],
				"high":[null,102.5,103.0],
				"low":[99.0,null,101.5],
				"close":[100.5,101.5,102.5],
				"volume":[1000,1100,1200]
			}]}
		}],"error":null}}`)
	})
	defer srv.Close()

	series, err := c.FetchHistory(context.Background(), "AAPL", "6mo", "1d")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 102.5, series[0].Close)
}

func TestFetchHistorySkipsShortQuoteArrays(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAPL"},
			"timestamp":[1704153600,1704240000],
			"indicators":{"quote":[{
				"open":[100.0,101.0],
				"high":[100.5],
				"low":[99.0,100.0],
				"close":[100.5,101.5],
				"volume":[]
			}]}
		}],"error":null}}`)
	})
	defer srv.Close()

	series, err := c.FetchHistory(context.Background(), "AAPL", "6mo", "1d")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, int64(0), series[0].Volume, "missing volume reads as zero")
}

func TestFetchHistoryRejectsBadParams(t *testing.T) {
	c := New()

	_, err := c.FetchHistory(context.Background(), "AAPL", "7mo", "1d")
	assert.True(t, errors.Is(err, core.ErrInvalidParameter), "got %v", err)

	_, err = c.FetchHistory(context.Background(), "AAPL", "6mo", "2d")
	assert.True(t, errors.Is(err, core.ErrInvalidParameter), "got %v", err)

	_, err = c.FetchHistory(context.Background(), "", "6mo", "1d")
	assert.True(t, errors.Is(err, core.ErrInvalidParameter), "got %v", err)
}

func TestFetchHistoryNotFound(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := c.FetchHistory(context.Background(), "FAKE", "6mo", "1d")
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound), "got %v", err)
}

func TestFetchHistoryServerError(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.FetchHistory(context.Background(), "AAPL", "6mo", "1d")
	assert.True(t, errors.Is(err, core.ErrUpstreamUnavailable), "got %v", err)
}

func TestFetchHistoryChartError(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	})
	defer srv.Close()

	_, err := c.FetchHistory(context.Background(), "FAKE", "6mo", "1d")
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound), "got %v", err)
}

func TestFetchHistoryTransportFailure(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {})
	srv.Close() // connection refused

	_, err := c.FetchHistory(context.Background(), "AAPL", "6mo", "1d")
	assert.True(t, errors.Is(err, core.ErrUpstreamUnavailable), "got %v", err)
}

func TestFetchQuote(t *testing.T) {
	now := time.Now().Unix()
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		fmt.Fprintf(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAPL","regularMarketPrice":187.4,"regularMarketVolume":55000,"regularMarketTime":%d},
			"timestamp":[],
			"indicators":{"quote":[]}
		}],"error":null}}`, now)
	})
	defer srv.Close()

	quote, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 187.4, quote.Price)
	assert.Equal(t, int64(55000), quote.Volume)
	assert.Equal(t, "yahoo", quote.Source)
}

func TestFetchQuoteMissingPrice(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"AAPL","regularMarketPrice":0},
			"timestamp":[],
			"indicators":{"quote":[]}
		}],"error":null}}`)
	})
	defer srv.Close()

	_, err := c.FetchQuote(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, core.ErrNoData), "got %v", err)
}
