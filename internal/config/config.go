package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Forecast  ForecastConfig
	Optimizer OptimizerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	Environment    string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type ForecastConfig struct {
	Alpha                    float64
	Beta                     float64
	ConfidenceLevel          float64
	HistoryDays              int
	BulkHistoryDays          int
	BaseDemand               float64
	PredictionTimeoutSeconds int
	BulkConcurrency          int
	RandomSeed               uint64
}

type OptimizerConfig struct {
	OrderingCost    float64
	HoldingCostRate float64
	UnitCost        float64
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	ModelTTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 45)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("FORECAST_ALPHA", 0.3)
	v.SetDefault("FORECAST_BETA", 0.1)
	v.SetDefault("FORECAST_CONFIDENCE_LEVEL", 0.95)
	v.SetDefault("FORECAST_HISTORY_DAYS", 90)
	v.SetDefault("FORECAST_BULK_HISTORY_DAYS", 60)
	v.SetDefault("FORECAST_BASE_DEMAND", 100.0)
	v.SetDefault("PREDICTION_TIMEOUT", 30)
	v.SetDefault("FORECAST_BULK_CONCURRENCY", 8)
	v.SetDefault("FORECAST_RANDOM_SEED", 0)

	v.SetDefault("OPTIMIZER_ORDERING_COST", 50.0)
	v.SetDefault("OPTIMIZER_HOLDING_COST_RATE", 0.25)
	v.SetDefault("OPTIMIZER_UNIT_COST", 10.0)

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "erp_user")
	v.SetDefault("DB_PASSWORD", "erp_password")
	v.SetDefault("DB_NAME", "erp_database")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MODEL_CACHE_TTL", 3600)
}

// Load reads configuration once per process from the environment and an
// optional .env file.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper builds a Config from v after applying defaults and environment
// overrides. Tests use it with a fresh viper instance.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			Environment:    v.GetString("ENVIRONMENT"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Forecast: ForecastConfig{
			Alpha:                    v.GetFloat64("FORECAST_ALPHA"),
			Beta:                     v.GetFloat64("FORECAST_BETA"),
			ConfidenceLevel:          v.GetFloat64("FORECAST_CONFIDENCE_LEVEL"),
			HistoryDays:              v.GetInt("FORECAST_HISTORY_DAYS"),
			BulkHistoryDays:          v.GetInt("FORECAST_BULK_HISTORY_DAYS"),
			BaseDemand:               v.GetFloat64("FORECAST_BASE_DEMAND"),
			PredictionTimeoutSeconds: v.GetInt("PREDICTION_TIMEOUT"),
			BulkConcurrency:          v.GetInt("FORECAST_BULK_CONCURRENCY"),
			RandomSeed:               v.GetUint64("FORECAST_RANDOM_SEED"),
		},
		Optimizer: OptimizerConfig{
			OrderingCost:    v.GetFloat64("OPTIMIZER_ORDERING_COST"),
			HoldingCostRate: v.GetFloat64("OPTIMIZER_HOLDING_COST_RATE"),
			UnitCost:        v.GetFloat64("OPTIMIZER_UNIT_COST"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			ModelTTLSeconds: v.GetInt("MODEL_CACHE_TTL"),
		},
	}
}
