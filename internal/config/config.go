package config

import (
	"strconv"
	"time"

	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RabbitURL     string
	AdminPassword string
	SessionTTL    time.Duration
	BaseURL       string
	PlanSlug      string
	PlanName      string
	PlanWidth     float64
	PlanHeight    float64
	OTLPEndpoint  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionTTL, _ := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if sessionTTL == 0 {
		sessionTTL = 14 * 24 * time.Hour
	}

	return &Config{
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getenv("MONGO_DB", "wedding"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitURL:     os.Getenv("RABBIT_URL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionTTL:    sessionTTL,
		BaseURL:       getenv("BASE_URL", "http://localhost:8080"),
		PlanSlug:      getenv("PLAN_SLUG", "main-hall"),
		PlanName:      getenv("PLAN_NAME", "Main hall"),
		PlanWidth:     getenvFloat("PLAN_WIDTH", 1200),
		PlanHeight:    getenvFloat("PLAN_HEIGHT", 800),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
