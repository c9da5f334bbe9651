// Package server provides the HTTP surface: item CRUD, the girl-math
// stock endpoints and the chat proxy.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"girlmathbackend/internal/ai"
	"girlmathbackend/internal/items"
	"girlmathbackend/internal/stock"
)

const Version = "1.0.0"

// StockService is what the stock handlers need from the engine.
type StockService interface {
	FetchQuote(ctx context.Context, ticker string) (stock.Quote, error)
	Calculate(ctx context.Context, ticker string, itemPrice, yearsAgo float64) (*stock.GirlMathResult, error)
	Recommend(ctx context.Context, req stock.RecommendRequest) (*stock.Recommendation, error)
	ESGStocks(ctx context.Context) []stock.Quote
	HistoryChart(ctx context.Context, ticker, window string) ([]byte, error)
}

// ChatService is the chat proxy boundary. May be absent when no API key
// is configured.
type ChatService interface {
	Send(ctx context.Context, message string, history []ai.Message) (string, error)
}

type Config struct {
	Log   zerolog.Logger
	Stock StockService
	Items *items.Store
	Chat  ChatService // nil disables /api/chat
	Port  string
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	stock  StockService
	items  *items.Store
	chat   ChatService
}

func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		stock:  cfg.Stock,
		items:  cfg.Items,
		chat:   cfg.Chat,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// Content scripts run on arbitrary origins, so CORS stays wide open.
	// Credentials must stay off when every origin is allowed.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{itemID}", s.handleGetItem)
			r.Put("/{itemID}", s.handleUpdateItem)
			r.Delete("/{itemID}", s.handleDeleteItem)
		})
		r.Route("/stock", func(r chi.Router) {
			r.Get("/price/{ticker}", s.handleStockPrice)
			r.Post("/calculate", s.handleCalculate)
			r.Post("/recommend", s.handleRecommend)
			r.Get("/esg", s.handleESG)
			r.Get("/chart/{ticker}", s.handleChart)
		})
		r.Post("/chat", s.handleChat)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to the Girl Math backend",
		"version": Version,
		"health":  "/health",
		"api":     "/api",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "girl-math-backend",
	})
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http: listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }
