package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	yahooUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	yahooTimeout   = 10 * time.Second
)

// yahooChartResp mirrors the Yahoo v8 chart response (trimmed to needed fields).
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// yahooSummaryResp mirrors the Yahoo v10 quoteSummary response (trimmed).
type yahooSummaryResp struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"price"`
			AssetProfile *struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
			EsgScores *struct {
				TotalEsg *struct {
					Raw float64 `json:"raw"`
				} `json:"totalEsg"`
			} `json:"esgScores"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteSummary"`
}

// YahooClient talks to the public Yahoo Finance JSON endpoints. Both
// query hosts are tried in order, with short backoffs between rounds.
type YahooClient struct {
	http     *http.Client
	hosts    []string
	backoffs []time.Duration
	log      zerolog.Logger
}

func NewYahooClient(log zerolog.Logger) *YahooClient {
	return &YahooClient{
		http:     &http.Client{Timeout: yahooTimeout},
		hosts:    []string{"query1.finance.yahoo.com", "query2.finance.yahoo.com"},
		backoffs: []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second},
		log:      log.With().Str("component", "yahoo").Logger(),
	}
}

// get fetches path from the first host that answers with a JSON 200,
// retrying each round after a backoff.
func (c *YahooClient) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < len(c.backoffs)+1; attempt++ {
		for _, host := range c.hosts {
			u := "https://" + host + path
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("User-Agent", yahooUserAgent)
			req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
			resp, err := c.http.Do(req)
			if err != nil {
				lastErr = err
				continue
			}
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("read yahoo response: %w", readErr)
				continue
			}
			if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
				lastErr = fmt.Errorf("yahoo %s returned 429", host)
				continue
			}
			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("yahoo %s returned %d: %s", host, resp.StatusCode, preview(body))
				continue
			}
			if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
				lastErr = fmt.Errorf("yahoo returned non-json body: %s", preview(body))
				continue
			}
			if err := json.Unmarshal(body, out); err != nil {
				lastErr = fmt.Errorf("parse yahoo json: %v; body: %s", err, preview(body))
				continue
			}
			return nil
		}
		if attempt < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}
	return lastErr
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}

// DailyCloses returns the daily close series for symbol between start and
// end. Null bars (holidays, halted sessions) are dropped. An unknown
// symbol yields an empty series rather than an error.
func (c *YahooClient) DailyCloses(ctx context.Context, symbol string, start, end time.Time) (Series, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits",
		url.PathEscape(symbol), start.Unix(), end.Unix())
	var yc yahooChartResp
	if err := c.get(ctx, path, &yc); err != nil {
		return Series{}, err
	}
	if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
		return Series{}, nil
	}
	ts := yc.Chart.Result[0].Timestamp
	raw := yc.Chart.Result[0].Indicators.Quote[0].Close
	n := len(ts)
	if len(raw) < n {
		n = len(raw)
	}
	out := Series{
		Timestamps: make([]int64, 0, n),
		Closes:     make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		if raw[i] == nil || *raw[i] <= 0 {
			continue
		}
		out.Timestamps = append(out.Timestamps, ts[i])
		out.Closes = append(out.Closes, *raw[i])
	}
	c.log.Debug().Str("symbol", symbol).Int("points", out.Len()).Msg("fetched daily closes")
	return out, nil
}

// Summary returns company name, sector and total ESG score for symbol.
// Missing modules come back as zero values; the caller applies defaults.
func (c *YahooClient) Summary(ctx context.Context, symbol string) (Summary, error) {
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s?modules=price,assetProfile,esgScores",
		url.PathEscape(symbol))
	var ys yahooSummaryResp
	if err := c.get(ctx, path, &ys); err != nil {
		return Summary{}, err
	}
	if len(ys.QuoteSummary.Result) == 0 {
		return Summary{}, fmt.Errorf("no summary data for %s", symbol)
	}
	r := ys.QuoteSummary.Result[0]
	var out Summary
	if r.Price != nil {
		out.CompanyName = r.Price.ShortName
		if out.CompanyName == "" {
			out.CompanyName = r.Price.LongName
		}
	}
	if r.AssetProfile != nil {
		out.Sector = r.AssetProfile.Sector
	}
	if r.EsgScores != nil && r.EsgScores.TotalEsg != nil {
		score := r.EsgScores.TotalEsg.Raw
		out.ESGScore = &score
	}
	return out, nil
}
