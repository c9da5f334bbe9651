package stock

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// approachTickers maps a risk approach to its curated ticker list.
var approachTickers = map[string][]string{
	"conservative": {"VTI", "VOO", "BND"},
	"balanced":     {"VT", "XEQT", "AAPL"},
	"aggressive":   {"QQQ", "NVDA", "TSLA"},
}

// esgWatchlist is the fixed universe screened by ESGStocks.
var esgWatchlist = []string{"MSFT", "NVDA", "ADBE", "TSLA", "V"}

const minESGScore = 60.0

// Service owns the girl-math engine: quote fetching with a TTL cache,
// growth-rate estimation, the investment comparison, the randomized
// recommendation variant and the ESG screen.
type Service struct {
	data   MarketData
	cache  *QuoteCache
	charts *chartCache
	rngMu  sync.Mutex
	rng    *rand.Rand
	log    zerolog.Logger
	now    func() time.Time
}

// pick returns a uniform index in [0, n). rand.Rand is not safe for
// concurrent use, so every draw goes through the mutex.
func (s *Service) pick(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// NewService builds a Service. rng may be nil, in which case a
// time-seeded source is used; tests pass a seeded one for deterministic
// ticker selection.
func NewService(data MarketData, cache *QuoteCache, rng *rand.Rand, log zerolog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		data:   data,
		cache:  cache,
		charts: newChartCache(),
		rng:    rng,
		log:    log.With().Str("component", "stock").Logger(),
		now:    time.Now,
	}
}

// FetchQuote returns the current quote for ticker, serving from the
// cache when fresh. Metadata problems never fail the fetch; price
// problems always do.
func (s *Service) FetchQuote(ctx context.Context, ticker string) (Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Quote{}, ErrInvalidTicker
	}

	if quote, ok := s.cache.Get(ticker); ok {
		s.log.Debug().Str("ticker", ticker).Msg("quote cache hit")
		return quote, nil
	}

	end := s.now()
	hist, err := s.data.DailyCloses(ctx, ticker, end.AddDate(0, 0, -7), end)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if hist.Len() == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	price := hist.Closes[hist.Len()-1]
	if price <= 0 {
		return Quote{}, fmt.Errorf("%w: %s resolved to %.2f", ErrInvalidPrice, ticker, price)
	}

	quote := Quote{
		Ticker:      ticker,
		Price:       round2(price),
		CompanyName: ticker,
		Sector:      "Unknown",
	}
	// Metadata is best-effort: keep the defaults on any failure.
	if summary, err := s.data.Summary(ctx, ticker); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("metadata fetch failed, using defaults")
	} else {
		if summary.CompanyName != "" {
			quote.CompanyName = summary.CompanyName
		}
		if summary.Sector != "" {
			quote.Sector = summary.Sector
		}
		quote.Sustainability = summary.ESGScore
	}

	s.cache.Put(ticker, quote)
	s.log.Info().Str("ticker", ticker).Float64("price", quote.Price).Msg("fetched quote")
	return quote, nil
}

// Calculate answers "what if I had invested the item price in ticker
// yearsAgo years back instead?". Any required fetch failure makes the
// whole calculation fail; there is no partial result.
func (s *Service) Calculate(ctx context.Context, ticker string, itemPrice, yearsAgo float64) (*GirlMathResult, error) {
	if itemPrice <= 0 {
		return nil, fmt.Errorf("%w: item price must be positive", ErrInvalidPrice)
	}
	if yearsAgo <= 0 {
		return nil, fmt.Errorf("%w: lookback must be positive", ErrInsufficientHistory)
	}

	quote, err := s.FetchQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	currentPrice := quote.Price

	end := s.now()
	start := end.Add(-time.Duration(yearsAgo * 365.25 * 24 * float64(time.Hour)))
	hist, err := s.data.DailyCloses(ctx, quote.Ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if hist.Len() < 2 {
		return nil, fmt.Errorf("%w: %s has %d historical points", ErrInsufficientHistory, quote.Ticker, hist.Len())
	}
	historicalPrice := hist.Closes[0]
	if historicalPrice <= 0 {
		return nil, fmt.Errorf("%w: historical close %.2f", ErrInvalidPrice, historicalPrice)
	}

	sharesBought := itemPrice / historicalPrice
	currentValue := sharesBought * currentPrice
	profitLoss := currentValue - itemPrice
	percentGain := profitLoss / itemPrice * 100
	isFree := currentValue >= 2*itemPrice

	// Growth over the actual span of the retrieved series, same sanity
	// band as the estimator.
	growthRate := defaultGrowthRate
	if span := hist.SpanYears(); span > 0 {
		growthRate = sanityOrDefault(cagr(historicalPrice, currentPrice, span))
	}

	var yearsUntilFree *float64
	if !isFree && growthRate > 0 {
		y := math.Log(2*itemPrice/currentValue) / math.Log(1+growthRate)
		y = round1(y)
		yearsUntilFree = &y
	}

	result := &GirlMathResult{
		Ticker:          quote.Ticker,
		ItemPrice:       itemPrice,
		YearsAgo:        yearsAgo,
		HistoricalPrice: round2(historicalPrice),
		CurrentPrice:    round2(currentPrice),
		SharesBought:    round4(sharesBought),
		CurrentValue:    round2(currentValue),
		ProfitLoss:      round2(profitLoss),
		PercentGain:     round2(percentGain),
		IsFree:          isFree,
		YearsUntilFree:  yearsUntilFree,
		GrowthRatePct:   round2(growthRate * 100),
		Timestamp:       s.now().UTC(),
	}
	s.log.Info().
		Str("ticker", result.Ticker).
		Float64("historical", result.HistoricalPrice).
		Float64("current", result.CurrentPrice).
		Float64("value", result.CurrentValue).
		Bool("free", result.IsFree).
		Msg("girl math calculated")
	return result, nil
}

// Recommend picks a ticker at random from the approach's curated list,
// runs the calculation and wraps it in a personalized narrative. One
// retry draws from the remaining tickers if the first pick fails.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	approach := strings.ToLower(strings.TrimSpace(req.Approach))
	tickers, ok := approachTickers[approach]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidApproach, req.Approach)
	}

	selected := tickers[s.pick(len(tickers))]
	s.log.Info().Str("approach", approach).Str("ticker", selected).Msg("recommendation pick")

	result, err := s.Calculate(ctx, selected, req.ItemPrice, req.YearsAgo)
	if err != nil {
		remaining := make([]string, 0, len(tickers)-1)
		for _, t := range tickers {
			if t != selected {
				remaining = append(remaining, t)
			}
		}
		if len(remaining) == 0 {
			return nil, err
		}
		selected = remaining[s.pick(len(remaining))]
		s.log.Warn().Err(err).Str("retry_ticker", selected).Msg("recommendation retrying")
		result, err = s.Calculate(ctx, selected, req.ItemPrice, req.YearsAgo)
		if err != nil {
			return nil, err
		}
	}

	blurb := renderBlurb(narrativeParams{
		Approach:     approach,
		Goal:         strings.ToLower(strings.TrimSpace(req.Goal)),
		Horizon:      req.Horizon,
		ShoppingSite: req.ShoppingSite,
		CartTotal:    req.CartTotal,
		Ticker:       result.Ticker,
		PastValue:    result.HistoricalPrice,
		TodayValue:   result.CurrentPrice,
		PercentGain:  result.PercentGain,
		PeriodYears:  result.YearsAgo,
	})

	return &Recommendation{
		Blurb:          blurb,
		Approach:       req.Approach,
		Goal:           req.Goal,
		Horizon:        req.Horizon,
		ShoppingSite:   req.ShoppingSite,
		GirlMathResult: *result,
	}, nil
}

// ESGStocks screens the fixed watchlist for high sustainability scores,
// highest first. Tickers without a score count as zero.
func (s *Service) ESGStocks(ctx context.Context) []Quote {
	out := make([]Quote, 0, len(esgWatchlist))
	for _, ticker := range esgWatchlist {
		quote, err := s.FetchQuote(ctx, ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("esg screen skipping ticker")
			continue
		}
		if esgScore(quote) >= minESGScore {
			out = append(out, quote)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return esgScore(out[i]) > esgScore(out[j])
	})
	return out
}

func esgScore(q Quote) float64 {
	if q.Sustainability == nil {
		return 0
	}
	return *q.Sustainability
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
