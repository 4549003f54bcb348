package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/api"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/api/handlers"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/cache"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/config"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/repository/postgres"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/service"
	"github.com/andresuchdata/autopo-py/forecast-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.LogLevel, cfg.Server.Environment)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	checks := map[string]handlers.ReadinessCheck{}

	// Initialize database
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		checks["postgres"] = db
	}

	// Initialize model cache
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	cacheReady := err == nil && cfg.Cache.Enabled
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to initialize redis cache, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}
	defer forecastCache.Close()

	// Initialize services
	forecastService, err := service.NewFromConfig(cfg, forecastCache, time.Now)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize forecast service")
	}
	if cacheReady {
		checks["redis"] = forecastService
	}

	// Initialize HTTP server
	router := api.NewRouter(
		&api.Services{ForecastService: forecastService, ReadinessChecks: checks},
		cfg.Server.AllowedOrigins,
		time.Duration(cfg.Forecast.PredictionTimeoutSeconds)*time.Second,
	)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Bool("cache", cfg.Cache.Enabled).
			Bool("database", cfg.Database.Enabled).
			Msg("Starting forecast server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
