package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Environment       string
	MongoURI          string
	DBName            string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	MidtransServerKey string
	MidtransBaseURL   string
	FonnteToken       string
	FonnteBaseURL     string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Environment:       getEnvOrDefault("APP_ENV", "development"),
		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "catering"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		MidtransServerKey: getEnvOrDefault("MIDTRANS_SERVER_KEY", ""),
		MidtransBaseURL:   getEnvOrDefault("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		FonnteToken:       getEnvOrDefault("FONNTE_TOKEN", ""),
		FonnteBaseURL:     getEnvOrDefault("FONNTE_BASE_URL", "https://api.fonnte.com"),
	}
}

// IsProduction reports whether gateway webhook signatures must be enforced.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
