package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"girlmathbackend/internal/ai"
	"girlmathbackend/internal/config"
	"girlmathbackend/internal/items"
	"girlmathbackend/internal/server"
	"girlmathbackend/internal/stock"
)

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(lvl)
}

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	log.Info().Str("version", server.Version).Msg("starting girl-math backend")

	store, err := items.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open item store")
	}
	defer store.Close()
	if err := store.Seed(); err != nil {
		log.Fatal().Err(err).Msg("failed to seed item store")
	}

	yahoo := stock.NewYahooClient(log)
	cache := stock.NewQuoteCache(0) // default TTL
	stockSvc := stock.NewService(yahoo, cache, nil, log)

	var chat server.ChatService
	if cfg.AIAPIKey != "" {
		chat = ai.NewChat(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, log)
	} else {
		log.Warn().Msg("no AI API key configured, /api/chat disabled")
	}

	srv := server.New(server.Config{
		Log:   log,
		Stock: stockSvc,
		Items: store,
		Chat:  chat,
		Port:  cfg.Port,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}
}
