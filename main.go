package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"automation-studio/api/pkg/config"
	"automation-studio/api/pkg/logger"
	"automation-studio/api/services/automation"
)

func main() {
	// Optional .env for local development; environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	mainRouter := mux.NewRouter()
	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()

	service := automation.NewService(cfg.Engine.NodeTimeout, cfg.Server.AllowedOrigins)
	service.LoadRoutes(apiRouter)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: corsHandler,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error().Err(err).Msg("server error")

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("could not stop server gracefully")
			srv.Close()
		}
	}
}
