package stock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarket serves canned data and counts provider invocations. A
// lookback of about a week is treated as a latest-close request, anything
// longer as a historical series request.
type fakeMarket struct {
	mu        sync.Mutex
	latest    map[string]float64
	hist      map[string]Series
	summaries map[string]Summary
	histErr   map[string]error
	calls     int
}

func (f *fakeMarket) DailyCloses(_ context.Context, symbol string, start, end time.Time) (Series, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err, ok := f.histErr[symbol]; ok {
		return Series{}, err
	}
	if end.Sub(start) <= 8*24*time.Hour {
		price, ok := f.latest[symbol]
		if !ok {
			return Series{}, nil
		}
		return Series{
			Timestamps: []int64{end.Add(-24 * time.Hour).Unix()},
			Closes:     []float64{price},
		}, nil
	}
	return f.hist[symbol], nil
}

func (f *fakeMarket) Summary(_ context.Context, symbol string) (Summary, error) {
	s, ok := f.summaries[symbol]
	if !ok {
		return Summary{}, fmt.Errorf("no summary for %s", symbol)
	}
	return s, nil
}

func (f *fakeMarket) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// spanSeries builds a series of n evenly spaced daily closes ending now,
// interpolating linearly from first to last, covering spanYears.
func spanSeries(spanYears float64, n int, first, last float64) Series {
	end := time.Now().Unix()
	span := int64(spanYears * 365.25 * 86400)
	s := Series{
		Timestamps: make([]int64, n),
		Closes:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		s.Timestamps[i] = end - span + int64(frac*float64(span))
		s.Closes[i] = first + (last-first)*frac
	}
	return s
}

func newTestService(f *fakeMarket, seed int64) *Service {
	return NewService(f, NewQuoteCache(0), rand.New(rand.NewSource(seed)), zerolog.Nop())
}

func TestFetchQuote_CacheHitSkipsProvider(t *testing.T) {
	f := &fakeMarket{
		latest:    map[string]float64{"AAPL": 189.5},
		summaries: map[string]Summary{},
	}
	svc := newTestService(f, 1)

	first, err := svc.FetchQuote(context.Background(), "aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", first.Ticker)
	assert.Equal(t, 189.5, first.Price)
	callsAfterFirst := f.callCount()
	assert.Equal(t, 1, callsAfterFirst)

	second, err := svc.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, f.callCount(), "cached quote must not hit the provider")
}

func TestFetchQuote_StaleEntryRefetches(t *testing.T) {
	f := &fakeMarket{latest: map[string]float64{"VTI": 250}}
	cache := NewQuoteCache(0)
	svc := NewService(f, cache, nil, zerolog.Nop())

	_, err := svc.FetchQuote(context.Background(), "VTI")
	require.NoError(t, err)
	require.Equal(t, 1, f.callCount())

	// Age the entry past the TTL.
	cache.now = func() time.Time { return time.Now().Add(quoteCacheTTL) }
	_, err = svc.FetchQuote(context.Background(), "VTI")
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())
}

func TestFetchQuote_EmptyTicker(t *testing.T) {
	f := &fakeMarket{}
	svc := newTestService(f, 1)

	_, err := svc.FetchQuote(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidTicker)
	assert.Equal(t, 0, f.callCount(), "invalid ticker must not reach the provider")
}

func TestFetchQuote_FailureModes(t *testing.T) {
	f := &fakeMarket{
		latest:  map[string]float64{"ZERO": 0},
		histErr: map[string]error{"BOOM": fmt.Errorf("connection reset")},
	}
	svc := newTestService(f, 1)

	_, err := svc.FetchQuote(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = svc.FetchQuote(context.Background(), "ZERO")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.FetchQuote(context.Background(), "BOOM")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestFetchQuote_MetadataIsBestEffort(t *testing.T) {
	f := &fakeMarket{latest: map[string]float64{"AAPL": 189.5}}
	svc := newTestService(f, 1)

	quote, err := svc.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.CompanyName)
	assert.Equal(t, "Unknown", quote.Sector)
	assert.Nil(t, quote.Sustainability)
}

func TestFetchQuote_MetadataApplied(t *testing.T) {
	score := 72.4
	f := &fakeMarket{
		latest: map[string]float64{"MSFT": 410.117},
		summaries: map[string]Summary{
			"MSFT": {CompanyName: "Microsoft Corporation", Sector: "Technology", ESGScore: &score},
		},
	}
	svc := newTestService(f, 1)

	quote, err := svc.FetchQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 410.12, quote.Price, "price is rounded to cents")
	assert.Equal(t, "Microsoft Corporation", quote.CompanyName)
	assert.Equal(t, "Technology", quote.Sector)
	require.NotNil(t, quote.Sustainability)
	assert.Equal(t, 72.4, *quote.Sustainability)
}

func TestCalculate_KnownScenario(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"AAPL": 189.5},
		hist:   map[string]Series{"AAPL": spanSeries(2, 504, 130, 189.5)},
	}
	svc := newTestService(f, 1)

	res, err := svc.Calculate(context.Background(), "AAPL", 150, 2)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, 130.0, res.HistoricalPrice)
	assert.Equal(t, 189.5, res.CurrentPrice)
	assert.Equal(t, 1.1538, res.SharesBought)
	assert.Equal(t, 218.65, res.CurrentValue)
	assert.Equal(t, 68.65, res.ProfitLoss)
	assert.Equal(t, 45.77, res.PercentGain)
	assert.False(t, res.IsFree)
	assert.InDelta(t, 20.73, res.GrowthRatePct, 0.02)
	require.NotNil(t, res.YearsUntilFree)
	assert.InDelta(t, 1.7, *res.YearsUntilFree, 0.11)
}

func TestCalculate_DoubledInvestmentIsFree(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"NVDA": 25},
		hist:   map[string]Series{"NVDA": spanSeries(2, 504, 10, 25)},
	}
	svc := newTestService(f, 1)

	res, err := svc.Calculate(context.Background(), "NVDA", 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 250.0, res.CurrentValue)
	assert.True(t, res.IsFree)
	assert.Nil(t, res.YearsUntilFree, "a doubled investment has no doubling horizon")
}

func TestCalculate_NegativeGrowthHasNoHorizon(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"BND": 100},
		hist:   map[string]Series{"BND": spanSeries(2, 504, 200, 100)},
	}
	svc := newTestService(f, 1)

	res, err := svc.Calculate(context.Background(), "BND", 150, 2)
	require.NoError(t, err)
	assert.False(t, res.IsFree)
	assert.Nil(t, res.YearsUntilFree, "cannot project doubling under non-positive growth")
	assert.Less(t, res.GrowthRatePct, 0.0)
}

func TestCalculate_ImplausibleGrowthFallsBack(t *testing.T) {
	// A near-vertical move over a few weeks annualizes far above the
	// sanity band, so the default rate must take over.
	f := &fakeMarket{
		latest: map[string]float64{"TSLA": 150},
		hist:   map[string]Series{"TSLA": spanSeries(0.1, 30, 100, 150)},
	}
	svc := newTestService(f, 1)

	res, err := svc.Calculate(context.Background(), "TSLA", 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.GrowthRatePct)
	require.NotNil(t, res.YearsUntilFree)
	assert.Equal(t, 3.7, *res.YearsUntilFree)
}

func TestCalculate_InsufficientHistory(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"NEWCO": 40},
		hist: map[string]Series{"NEWCO": {
			Timestamps: []int64{time.Now().Unix()},
			Closes:     []float64{40},
		}},
	}
	svc := newTestService(f, 1)

	_, err := svc.Calculate(context.Background(), "NEWCO", 100, 2)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestCalculate_QuoteFailureIsTotal(t *testing.T) {
	f := &fakeMarket{}
	svc := newTestService(f, 1)

	res, err := svc.Calculate(context.Background(), "MISSING", 100, 2)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRecommend_TickerComesFromApproachList(t *testing.T) {
	members := map[string]map[string]bool{
		"conservative": {"VTI": true, "VOO": true, "BND": true},
		"balanced":     {"VT": true, "XEQT": true, "AAPL": true},
		"aggressive":   {"QQQ": true, "NVDA": true, "TSLA": true},
	}
	f := &fakeMarket{latest: map[string]float64{}, hist: map[string]Series{}}
	for set := range members {
		for ticker := range members[set] {
			f.latest[ticker] = 150
			f.hist[ticker] = spanSeries(2, 504, 100, 150)
		}
	}

	for approach, allowed := range members {
		for seed := int64(0); seed < 10; seed++ {
			svc := newTestService(f, seed)
			rec, err := svc.Recommend(context.Background(), RecommendRequest{
				ItemPrice: 80, YearsAgo: 2, Approach: approach,
				Goal: "travel", Horizon: "medium", ShoppingSite: "Amazon", CartTotal: 80,
			})
			require.NoError(t, err)
			assert.True(t, allowed[rec.Ticker], "%s pick %s outside curated list", approach, rec.Ticker)
		}
	}
}

func TestRecommend_UnknownApproach(t *testing.T) {
	svc := newTestService(&fakeMarket{}, 1)
	rec, err := svc.Recommend(context.Background(), RecommendRequest{
		ItemPrice: 80, YearsAgo: 2, Approach: "speculative",
	})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrInvalidApproach)
}

func TestRecommend_RetriesExactlyOnce(t *testing.T) {
	// All conservative tickers fail, so after the initial pick and one
	// retry the recommendation gives up: two quote fetches, no more.
	f := &fakeMarket{
		histErr: map[string]error{
			"VTI": fmt.Errorf("down"), "VOO": fmt.Errorf("down"), "BND": fmt.Errorf("down"),
		},
	}
	svc := newTestService(f, 1)

	rec, err := svc.Recommend(context.Background(), RecommendRequest{
		ItemPrice: 80, YearsAgo: 2, Approach: "conservative",
	})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, 2, f.callCount(), "expected the initial pick plus exactly one retry")
}

func TestRecommend_RetryPicksDifferentTicker(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		f := &fakeMarket{
			latest: map[string]float64{"VOO": 400, "BND": 70},
			hist: map[string]Series{
				"VOO": spanSeries(2, 504, 300, 400),
				"BND": spanSeries(2, 504, 72, 70),
			},
			// VTI always fails; any first pick of it must fall through
			// to a different conservative ticker.
			histErr: map[string]error{"VTI": fmt.Errorf("down")},
		}
		svc := newTestService(f, seed)
		rec, err := svc.Recommend(context.Background(), RecommendRequest{
			ItemPrice: 80, YearsAgo: 2, Approach: "conservative",
			Goal: "emergency", Horizon: "long", ShoppingSite: "Sephora", CartTotal: 80,
		})
		require.NoError(t, err)
		assert.NotEqual(t, "VTI", rec.Ticker)
	}
}

func TestRecommend_ConcurrentRequests(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"VTI": 150, "VOO": 150, "BND": 150},
		hist: map[string]Series{
			"VTI": spanSeries(2, 504, 100, 150),
			"VOO": spanSeries(2, 504, 100, 150),
			"BND": spanSeries(2, 504, 100, 150),
		},
	}
	svc := newTestService(f, 1)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, err := svc.Recommend(context.Background(), RecommendRequest{
					ItemPrice: 80, YearsAgo: 2, Approach: "conservative",
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestRecommend_BlurbMentionsPick(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"VTI": 150, "VOO": 150, "BND": 150},
		hist: map[string]Series{
			"VTI": spanSeries(2, 504, 100, 150),
			"VOO": spanSeries(2, 504, 100, 150),
			"BND": spanSeries(2, 504, 100, 150),
		},
	}
	svc := newTestService(f, 7)
	rec, err := svc.Recommend(context.Background(), RecommendRequest{
		ItemPrice: 1250, YearsAgo: 2, Approach: "conservative",
		Goal: "future_home", Horizon: "long", ShoppingSite: "Zara", CartTotal: 1250,
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Blurb, rec.Ticker)
	assert.Contains(t, rec.Blurb, "$1,250.00")
	assert.Contains(t, rec.Blurb, "+50.0%")
	assert.Contains(t, rec.Blurb, "real estate")
}

func TestESGStocks_FilterAndOrder(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	f := &fakeMarket{
		latest: map[string]float64{"MSFT": 1, "NVDA": 1, "ADBE": 1, "TSLA": 1, "V": 1},
		summaries: map[string]Summary{
			"MSFT": {CompanyName: "Microsoft", Sector: "Technology", ESGScore: score(72)},
			"ADBE": {CompanyName: "Adobe", Sector: "Technology", ESGScore: score(65.2)},
			"TSLA": {CompanyName: "Tesla", Sector: "Consumer Cyclical", ESGScore: score(40)},
			"V":    {CompanyName: "Visa", Sector: "Financial Services", ESGScore: score(80)},
			// NVDA has no summary: score counts as zero and is filtered.
		},
	}
	svc := newTestService(f, 1)

	got := svc.ESGStocks(context.Background())
	require.Len(t, got, 3)
	assert.Equal(t, "V", got[0].Ticker)
	assert.Equal(t, "MSFT", got[1].Ticker)
	assert.Equal(t, "ADBE", got[2].Ticker)
}

func TestESGStocks_FetchFailuresAreSkipped(t *testing.T) {
	f := &fakeMarket{
		latest: map[string]float64{"MSFT": 1},
		summaries: map[string]Summary{
			"MSFT": {ESGScore: func(v float64) *float64 { return &v }(70)},
		},
	}
	svc := newTestService(f, 1)

	got := svc.ESGStocks(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "MSFT", got[0].Ticker)
}
