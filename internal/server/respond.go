package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"girlmathbackend/internal/stock"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders {"detail": ...}, the error shape the extension
// already consumes.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// quotePayload is the wire form of a Quote. The sustainability score is
// numeric inside the engine; the "N/A" sentinel exists only here.
type quotePayload struct {
	Ticker              string  `json:"ticker"`
	Price               float64 `json:"price"`
	CompanyName         string  `json:"company_name"`
	Sector              string  `json:"sector"`
	SustainabilityScore string  `json:"sustainability_score"`
}

func toQuotePayload(q stock.Quote) quotePayload {
	score := "N/A"
	if q.Sustainability != nil {
		score = strconv.FormatFloat(*q.Sustainability, 'f', -1, 64)
	}
	return quotePayload{
		Ticker:              q.Ticker,
		Price:               q.Price,
		CompanyName:         q.CompanyName,
		Sector:              q.Sector,
		SustainabilityScore: score,
	}
}
