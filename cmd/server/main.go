// Package main is the entry point for the option-chain flow service. It
// scrapes the NSE option chain through a primed browser-like session,
// classifies per-strike open-interest flow, and serves the results over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oiflow/internal/clients/nse"
	"oiflow/internal/config"
	"oiflow/internal/modules/flow"
	flowhandlers "oiflow/internal/modules/flow/handlers"
	"oiflow/internal/sample"
	"oiflow/internal/server"
	"oiflow/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("nse_base_url", cfg.NSEBaseURL).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting option-chain flow service")

	nseClient := nse.NewClient(cfg.NSEBaseURL, cfg.NSECookie, log)
	flowService := flow.NewService(nseClient, sample.NewStore(), log)
	flowHandlers := flowhandlers.NewHandler(flowService, log)

	srv := server.New(server.Config{
		Log:          log,
		Port:         cfg.Port,
		DevMode:      cfg.DevMode,
		FlowHandlers: flowHandlers,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Service stopped")
}
