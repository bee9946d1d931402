package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	PhotoPath         string
	RadiusMeters      float64
	NotifyBackend     string
	NotifyWebhookURL  string
	NotifyEveryUpdate bool
	LogLevel          string
	LogFile           string
}

func Load() *Config {
	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/nearmark.db"),
		PhotoPath:         getEnv("PHOTO_PATH", "/data/photos"),
		RadiusMeters:      getEnvFloat("RADIUS_METERS", 100),
		NotifyBackend:     getEnv("NOTIFY_BACKEND", "log"),
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyEveryUpdate: os.Getenv("NEARMARK_NOTIFY_EVERY_UPDATE") == "1",
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
