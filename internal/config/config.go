package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Stripe      StripeConfig
	PayPal      PayPalConfig
	Resend      ResendConfig
	Shop        ShopConfig
	Worker      WorkerConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
}

type ResendConfig struct {
	APIKey string
}

// ShopConfig carries the storefront identity used in checkout
// redirects and outbound email.
type ShopConfig struct {
	BaseURL   string
	FromEmail string
	Name      string
}

type WorkerConfig struct {
	SweepInterval time.Duration
	RetryDelay    time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com")
	viper.SetDefault("WORKER_SWEEP_INTERVAL", "1m")
	viper.SetDefault("WORKER_RETRY_DELAY", "30m")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	sweepInterval, err := time.ParseDuration(getEnvOrViper("WORKER_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_SWEEP_INTERVAL: %w", err)
	}
	retryDelay, err := time.ParseDuration(getEnvOrViper("WORKER_RETRY_DELAY", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_RETRY_DELAY: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "orderapi"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnvOrViper("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnvOrViper("STRIPE_WEBHOOK_SECRET", ""),
		},
		PayPal: PayPalConfig{
			ClientID: getEnvOrViper("PAYPAL_CLIENT_ID", ""),
			Secret:   getEnvOrViper("PAYPAL_SECRET", ""),
			BaseURL:  getEnvOrViper("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		Resend: ResendConfig{
			APIKey: getEnvOrViper("RESEND_API_KEY", ""),
		},
		Shop: ShopConfig{
			BaseURL:   getEnvOrViper("SHOP_BASE_URL", "http://localhost:3000"),
			FromEmail: getEnvOrViper("SHOP_FROM_EMAIL", "orders@nexusshop.dev"),
			Name:      getEnvOrViper("SHOP_NAME", "NEXUS AI Shop"),
		},
		Worker: WorkerConfig{
			SweepInterval: sweepInterval,
			RetryDelay:    retryDelay,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Provider credentials are deliberately not validated here: every
	// provider is optional in development, and the services that need
	// them fail fast with a configuration error when invoked.
	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
