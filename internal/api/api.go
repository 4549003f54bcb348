package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/api/handlers"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/api/middleware"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService *service.ForecastService
	ReadinessChecks map[string]handlers.ReadinessCheck
}

func NewRouter(services *Services, allowedOrigins []string, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	var checks map[string]handlers.ReadinessCheck
	if services != nil {
		checks = services.ReadinessChecks
	}
	healthHandler := handlers.NewHealthHandler(checks)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ForecastService != nil {
		forecastHandler := handlers.NewForecastHandler(services.ForecastService)
		forecastGroup := apiGroup.Group("/forecast")
		forecastGroup.Use(middleware.Timeout(requestTimeout))
		{
			forecastGroup.POST("/demand", forecastHandler.ForecastDemand)
			forecastGroup.POST("/stock-optimization", forecastHandler.OptimizeStock)
			forecastGroup.POST("/seasonal-patterns", forecastHandler.SeasonalPatterns)
			forecastGroup.POST("/bulk-forecast", forecastHandler.BulkForecast)
			forecastGroup.GET("/insights", forecastHandler.GetInsights)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
