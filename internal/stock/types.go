package stock

import (
	"context"
	"time"
)

// Quote is a point-in-time snapshot of a ticker. Immutable once built;
// lives for one cache entry.
type Quote struct {
	Ticker         string
	Price          float64
	CompanyName    string
	Sector         string
	Sustainability *float64 // total ESG score, nil when unavailable
}

// Series is an ordered run of daily (timestamp, close) pairs. Transient:
// used within a single estimation or calculation, never cached.
type Series struct {
	Timestamps []int64 // unix seconds, ascending
	Closes     []float64
}

func (s Series) Len() int { return len(s.Closes) }

// SpanYears is the real elapsed time covered by the series in years.
func (s Series) SpanYears() float64 {
	if len(s.Timestamps) < 2 {
		return 0
	}
	days := float64(s.Timestamps[len(s.Timestamps)-1]-s.Timestamps[0]) / 86400.0
	return days / 365.25
}

// Summary is the descriptive metadata attached to a quote. All fields
// are best-effort.
type Summary struct {
	CompanyName string
	Sector      string
	ESGScore    *float64
}

// MarketData is the outbound boundary to the market-data provider.
// Implementations return empty series for unknown tickers; callers treat
// empty results and transport errors as equivalent failure signals.
type MarketData interface {
	// DailyCloses returns daily close prices for symbol between start and end.
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) (Series, error)
	// Summary returns descriptive metadata for symbol.
	Summary(ctx context.Context, symbol string) (Summary, error)
}

// GirlMathResult is the investment-comparison outcome: what the item
// money would be worth had it been invested YearsAgo years back.
type GirlMathResult struct {
	Ticker          string    `json:"ticker"`
	ItemPrice       float64   `json:"item_price"`
	YearsAgo        float64   `json:"years_ago"`
	HistoricalPrice float64   `json:"historical_stock_price"`
	CurrentPrice    float64   `json:"current_stock_price"`
	SharesBought    float64   `json:"shares_bought"`
	CurrentValue    float64   `json:"current_value"`
	ProfitLoss      float64   `json:"profit_loss"`
	PercentGain     float64   `json:"percent_gain"`
	IsFree          bool      `json:"is_free"`
	YearsUntilFree  *float64  `json:"years_until_free"`
	GrowthRatePct   float64   `json:"growth_rate_percentage"`
	Timestamp       time.Time `json:"timestamp"`
}

// RecommendRequest carries the personalization inputs for Recommend.
type RecommendRequest struct {
	ItemPrice    float64
	YearsAgo     float64
	Approach     string
	Goal         string
	Horizon      string
	ShoppingSite string
	CartTotal    float64
}

// Recommendation is a GirlMathResult for a randomly selected ticker plus
// the personalized narrative.
type Recommendation struct {
	Blurb        string `json:"main_blurb"`
	Approach     string `json:"approach"`
	Goal         string `json:"goal"`
	Horizon      string `json:"horizon"`
	ShoppingSite string `json:"shopping_site"`
	GirlMathResult
}
