package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gochart/internal"
	"gochart/internal/api"
	"gochart/internal/config"
	"gochart/internal/container"
)

// runTimeout bounds a single pipeline request end to end
const runTimeout = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger.Named("Server")

	appContainer, err := container.New(appConfig, internal.DefaultLogger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The database is optional: without it SQL execution, feedback and usage persistence are off
	if appConfig.Database.URL != "" {
		if err := appContainer.InitWithDatabase(ctx); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, running without SQL execution or usage persistence")
	}

	hub := appContainer.EnableEvents()
	charts := api.NewChartHandler(appContainer.Pipeline, appConfig.Server.MaxConcurrentRuns, runTimeout, internal.DefaultLogger)
	router := api.NewRouter(appConfig.Server.GinMode, charts, hub)

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting GoChart server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("container shutdown: %v", err)
	}
}
