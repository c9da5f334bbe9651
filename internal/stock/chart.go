package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	charts "github.com/vicanso/go-charts/v2"
)

// chartWindows maps the accepted window aliases to lookback years.
var chartWindows = map[string]float64{
	"1y": 1,
	"2y": 2,
	"5y": 5,
}

// HistoryChart renders a daily-close line chart for ticker as PNG bytes.
// window is one of 1y, 2y or 5y (default 1y). Rendered images are cached
// for a minute.
func (s *Service) HistoryChart(ctx context.Context, ticker, window string) ([]byte, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	window = strings.ToLower(strings.TrimSpace(window))
	if window == "" {
		window = "1y"
	}
	years, ok := chartWindows[window]
	if !ok {
		return nil, fmt.Errorf("unknown chart window %q", window)
	}

	cacheKey := ticker + "|" + window
	if img, ok := s.charts.get(cacheKey); ok {
		return img, nil
	}

	end := s.now()
	start := end.Add(-time.Duration(years * 365.25 * 24 * float64(time.Hour)))
	hist, err := s.data.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if hist.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	labels := make([]string, hist.Len())
	for i, ts := range hist.Timestamps {
		labels[i] = time.Unix(ts, 0).UTC().Format("Jan 2006")
	}

	painter, err := charts.LineRender([][]float64{hist.Closes},
		charts.TitleTextOptionFunc(ticker+" • "+window),
		charts.XAxisDataOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	img, err := painter.Bytes()
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, errors.New("empty chart render")
	}

	s.charts.set(cacheKey, img)
	return img, nil
}
