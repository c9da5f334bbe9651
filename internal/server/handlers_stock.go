package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"girlmathbackend/internal/stock"
)

type calculateRequest struct {
	Ticker    string  `json:"ticker"`
	ItemPrice float64 `json:"item_price"`
	YearsAgo  float64 `json:"years_ago"`
}

type recommendRequest struct {
	ItemPrice    float64 `json:"item_price"`
	YearsAgo     float64 `json:"years_ago"`
	Approach     string  `json:"approach"`
	Goal         string  `json:"goal"`
	Horizon      string  `json:"horizon"`
	ShoppingSite string  `json:"shopping_site"`
	CartTotal    float64 `json:"cart_total"`
}

func (s *Server) handleStockPrice(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	quote, err := s.stock.FetchQuote(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, stock.ErrInvalidTicker) {
			writeError(w, http.StatusBadRequest, "ticker must not be empty")
			return
		}
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Could not fetch data for ticker '%s'. Please verify the ticker symbol is valid.", ticker))
		return
	}
	writeJSON(w, http.StatusOK, toQuotePayload(quote))
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.YearsAgo == 0 {
		req.YearsAgo = 2
	}
	if req.ItemPrice <= 0 || req.YearsAgo <= 0 {
		writeError(w, http.StatusBadRequest, "item_price and years_ago must be positive")
		return
	}

	result, err := s.stock.Calculate(r.Context(), req.Ticker, req.ItemPrice, req.YearsAgo)
	if err != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Could not fetch data for ticker '%s'. Please check the ticker symbol and try again or ensure there is sufficient historical data.", req.Ticker))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.YearsAgo == 0 {
		req.YearsAgo = 2
	}
	if req.ItemPrice <= 0 || req.YearsAgo <= 0 {
		writeError(w, http.StatusBadRequest, "item_price and years_ago must be positive")
		return
	}

	result, err := s.stock.Recommend(r.Context(), stock.RecommendRequest{
		ItemPrice:    req.ItemPrice,
		YearsAgo:     req.YearsAgo,
		Approach:     req.Approach,
		Goal:         req.Goal,
		Horizon:      req.Horizon,
		ShoppingSite: req.ShoppingSite,
		CartTotal:    req.CartTotal,
	})
	if err != nil {
		if errors.Is(err, stock.ErrInvalidApproach) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Unknown approach '%s'. Use conservative, balanced or aggressive.", req.Approach))
			return
		}
		writeError(w, http.StatusBadRequest,
			"Could not build a recommendation right now. Please try again later.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleESG(w http.ResponseWriter, r *http.Request) {
	quotes := s.stock.ESGStocks(r.Context())
	if len(quotes) == 0 {
		writeError(w, http.StatusServiceUnavailable,
			"Unable to fetch ESG stock data at this time. Please try again later.")
		return
	}
	payload := make([]quotePayload, len(quotes))
	for i, q := range quotes {
		payload[i] = toQuotePayload(q)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	window := r.URL.Query().Get("window")
	img, err := s.stock.HistoryChart(r.Context(), ticker, window)
	if err != nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Could not render chart for ticker '%s'.", ticker))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	_, _ = w.Write(img)
}
