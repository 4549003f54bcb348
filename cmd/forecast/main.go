package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/cache"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/config"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/export"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/service"
	"github.com/andresuchdata/autopo-py/forecast-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

func newXLSXFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "xlsx",
		Usage: "Also write the result as an Excel workbook to this path",
	}
}

func newProductFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "product-id",
			Usage: "Product UUID (random when omitted)",
		},
		&cli.StringFlag{
			Name:  "tenant-id",
			Usage: "Tenant UUID (random when omitted)",
		},
	}
}

func main() {
	if err := newApp(time.Now).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("forecast command failed")
	}
}

func newApp(now func() time.Time) *cli.App {
	return &cli.App{
		Name:  "forecast",
		Usage: "Run demand forecasts and stock optimizations offline",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:    "seed",
				Usage:   "Random seed for reproducible output (0 draws from the global source)",
				EnvVars: []string{"FORECAST_RANDOM_SEED"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"), "development")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "demand",
				Usage: "Forecast daily demand for a product",
				Flags: append(newProductFlags(),
					&cli.IntFlag{Name: "days", Usage: "Days to forecast (1-365)", Value: 30},
					&cli.BoolFlag{Name: "no-confidence", Usage: "Omit confidence bounds"},
					newXLSXFlag(),
				),
				Action: func(c *cli.Context) error {
					days := c.Int("days")
					if days < 1 || days > 365 {
						return fmt.Errorf("days must be between 1 and 365, got %d", days)
					}
					productID, tenantID, err := parseIDs(c)
					if err != nil {
						return err
					}
					svc, err := newService(c, now)
					if err != nil {
						return err
					}

					result, err := svc.ForecastDemand(c.Context, service.DemandRequest{
						ProductID:         productID,
						TenantID:          tenantID,
						ForecastDays:      days,
						IncludeConfidence: !c.Bool("no-confidence"),
					})
					if err != nil {
						return fmt.Errorf("failed to generate forecast: %w", err)
					}

					if err := maybeExport(c, func() (*excelize.File, error) { return export.ForecastWorkbook(result) }); err != nil {
						return err
					}
					return printJSON(c.App.Writer, result)
				},
			},
			{
				Name:  "optimize",
				Usage: "Compute safety stock, reorder point and order quantity",
				Flags: append(newProductFlags(),
					&cli.Float64Flag{Name: "current-stock", Usage: "Units on hand", Required: true},
					&cli.IntFlag{Name: "lead-time", Usage: "Supplier lead time in days (1-90)", Value: 7},
					&cli.Float64Flag{Name: "service-level", Usage: "Target service level (0-1)", Value: 0.95},
					&cli.Float64Flag{Name: "avg-demand", Usage: "Average daily demand (estimated when omitted)"},
					&cli.Float64Flag{Name: "demand-std", Usage: "Daily demand standard deviation (estimated when omitted)"},
					newXLSXFlag(),
				),
				Action: func(c *cli.Context) error {
					leadTime := c.Int("lead-time")
					if leadTime < 1 || leadTime > 90 {
						return fmt.Errorf("lead-time must be between 1 and 90, got %d", leadTime)
					}
					serviceLevel := c.Float64("service-level")
					if serviceLevel < 0 || serviceLevel > 1 {
						return fmt.Errorf("service-level must be between 0 and 1, got %v", serviceLevel)
					}
					productID, tenantID, err := parseIDs(c)
					if err != nil {
						return err
					}
					svc, err := newService(c, now)
					if err != nil {
						return err
					}

					req := service.StockRequest{
						ProductID:    productID,
						TenantID:     tenantID,
						CurrentStock: c.Float64("current-stock"),
						LeadTimeDays: leadTime,
						ServiceLevel: serviceLevel,
					}
					if c.IsSet("avg-demand") {
						v := c.Float64("avg-demand")
						req.AvgDailyDemand = &v
					}
					if c.IsSet("demand-std") {
						v := c.Float64("demand-std")
						req.DemandStd = &v
					}

					result, err := svc.OptimizeStock(c.Context, req)
					if err != nil {
						return fmt.Errorf("failed to optimize stock: %w", err)
					}

					if err := maybeExport(c, func() (*excelize.File, error) { return export.OptimizationWorkbook(result) }); err != nil {
						return err
					}
					return printJSON(c.App.Writer, result)
				},
			},
			{
				Name:  "seasonal",
				Usage: "Analyze monthly and weekly seasonality",
				Flags: append(newProductFlags(),
					&cli.IntFlag{Name: "years", Usage: "Years to analyze (1-5)", Value: 2},
					newXLSXFlag(),
				),
				Action: func(c *cli.Context) error {
					years := c.Int("years")
					if years < 1 || years > 5 {
						return fmt.Errorf("years must be between 1 and 5, got %d", years)
					}
					productID, tenantID, err := parseIDs(c)
					if err != nil {
						return err
					}
					svc, err := newService(c, now)
					if err != nil {
						return err
					}

					profile, err := svc.SeasonalPatterns(c.Context, service.SeasonalRequest{
						ProductID: productID,
						TenantID:  tenantID,
						Years:     years,
					})
					if err != nil {
						return fmt.Errorf("failed to analyze seasonal patterns: %w", err)
					}

					if err := maybeExport(c, func() (*excelize.File, error) { return export.SeasonalWorkbook(profile) }); err != nil {
						return err
					}
					return printJSON(c.App.Writer, profile)
				},
			},
			{
				Name:  "cache",
				Usage: "Manage the redis model cache shared with the server",
				Subcommands: []*cli.Command{
					{
						Name:  "flush",
						Usage: "Drop every cached forecast and seasonal profile",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "redis-url",
								Usage:   "Redis URL (falls back to REDIS_HOST/REDIS_PORT)",
								EnvVars: []string{"REDIS_URL"},
							},
						},
						Action: func(c *cli.Context) error {
							cfg := config.Load().Cache
							cfg.Enabled = true
							if c.IsSet("redis-url") {
								cfg.RedisURL = c.String("redis-url")
							}

							forecastCache, err := cache.NewForecastCache(cfg)
							if err != nil {
								return fmt.Errorf("failed to connect to redis: %w", err)
							}
							defer forecastCache.Close()

							if err := forecastCache.InvalidateAll(c.Context); err != nil {
								return fmt.Errorf("failed to flush cache: %w", err)
							}
							logger.Log.Info().Msg("model cache flushed")
							return printJSON(c.App.Writer, map[string]string{"status": "flushed"})
						},
					},
				},
			},
		},
	}
}

func newService(c *cli.Context, now func() time.Time) (*service.ForecastService, error) {
	cfg := config.Load()
	if c.IsSet("seed") {
		cfg.Forecast.RandomSeed = c.Uint64("seed")
	}
	// offline runs never touch redis
	return service.NewFromConfig(cfg, nil, now)
}

func parseIDs(c *cli.Context) (uuid.UUID, uuid.UUID, error) {
	productID, err := parseOrNew(c.String("product-id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid product-id: %w", err)
	}
	tenantID, err := parseOrNew(c.String("tenant-id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid tenant-id: %w", err)
	}
	return productID, tenantID, nil
}

func parseOrNew(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}

func maybeExport(c *cli.Context, build func() (*excelize.File, error)) error {
	path := c.String("xlsx")
	if path == "" {
		return nil
	}

	f, err := build()
	if err != nil {
		return err
	}
	if err := export.Save(f, path); err != nil {
		return err
	}

	logger.Log.Info().Str("path", path).Msg("workbook written")
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
