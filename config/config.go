package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Mongo configuration.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisRateLimitDB int    `mapstructure:"REDIS_RATE_LIMIT_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment provider configuration.
	StripeKey       string  `mapstructure:"STRIPE_KEY"`
	WebhookSecret   string  `mapstructure:"WEBHOOK_SECRET"`
	PlatformFeeRate float64 `mapstructure:"PLATFORM_FEE_RATE"`
	DefaultCurrency string  `mapstructure:"DEFAULT_CURRENCY"`

	// Rate limiting.
	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "vendly")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_RATE_LIMIT_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("PLATFORM_FEE_RATE", 0.10)
	viper.SetDefault("DEFAULT_CURRENCY", "ZAR")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
