package stock

import (
	"context"
	"math"
	"time"
)

const (
	// defaultGrowthRate is the fallback annual rate when a historical CAGR
	// cannot be computed or fails the sanity band.
	defaultGrowthRate = 0.08

	tradingDaysPerYear = 252
	minSpanYears       = 0.5
	minDataCoverage    = 0.8
)

// cagr is the compound annual growth rate taking start to end over
// actualYears.
func cagr(start, end, actualYears float64) float64 {
	return math.Pow(end/start, 1/actualYears) - 1
}

// sanityOrDefault rejects rates outside (-0.5, 1.0]. A single noisy
// sample can otherwise fabricate a deceptive years-to-double figure.
func sanityOrDefault(rate float64) float64 {
	if rate <= -0.5 || rate > 1.0 {
		return defaultGrowthRate
	}
	return rate
}

// EstimateGrowthRate computes the annualized compound growth rate for
// ticker over a lookback of years. It never fails: any data problem
// resolves to the default rate.
func (s *Service) EstimateGrowthRate(ctx context.Context, ticker string, years float64) float64 {
	log := s.log.With().Str("ticker", ticker).Float64("years", years).Logger()
	if years <= 0 {
		return defaultGrowthRate
	}

	end := s.now()
	start := end.Add(-time.Duration(years * 365.25 * 24 * float64(time.Hour)))
	hist, err := s.data.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		log.Warn().Err(err).Msg("growth: provider error, using default rate")
		return defaultGrowthRate
	}
	if hist.Len() < 2 {
		log.Warn().Msg("growth: insufficient data, using default rate")
		return defaultGrowthRate
	}
	if float64(hist.Len()) < years*tradingDaysPerYear*minDataCoverage {
		log.Warn().Int("points", hist.Len()).Msg("growth: sparse series, using default rate")
		return defaultGrowthRate
	}

	startPrice := hist.Closes[0]
	endPrice := hist.Closes[hist.Len()-1]
	if startPrice <= 0 || endPrice <= 0 {
		log.Warn().Msg("growth: non-positive endpoint price, using default rate")
		return defaultGrowthRate
	}

	actualYears := hist.SpanYears()
	if actualYears < minSpanYears {
		log.Warn().Float64("span_years", actualYears).Msg("growth: span too short, using default rate")
		return defaultGrowthRate
	}

	rate := cagr(startPrice, endPrice, actualYears)
	bounded := sanityOrDefault(rate)
	if bounded != rate {
		log.Warn().Float64("cagr", rate).Msg("growth: rate outside sanity band, using default rate")
		return bounded
	}
	log.Debug().Float64("cagr", rate).Float64("start", startPrice).Float64("end", endPrice).Msg("growth: computed CAGR")
	return rate
}
