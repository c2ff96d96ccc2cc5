package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret string

	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string

	FrontendURL string

	ShippingFlatFee   float64
	FreeShippingAbove float64
	TaxRate           float64

	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPass       string
	SMTPSenderName string

	OrderEventsTopicARN string
	AWSRegion           string
}

// LoadConfig reads configuration from the environment, loading a local .env
// file first if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "mobilemania"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		ShippingFlatFee:   getEnvFloat("SHIPPING_FLAT_FEE", 50),
		FreeShippingAbove: getEnvFloat("FREE_SHIPPING_ABOVE", 10000),
		TaxRate:           getEnvFloat("TAX_RATE", 0.05),

		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		SMTPSenderName: getEnv("SMTP_SENDER_NAME", "MobileMania"),

		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("missing Stripe configuration (STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET)")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
