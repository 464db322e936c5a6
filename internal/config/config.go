package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	APIBaseURL         string
	AreaAPIBaseURL     string
	AreaAPITimeout     time.Duration
	AreaCacheTTL       time.Duration
	StoragePath        string
	StorageNamespace   string
	RedisURL           string
	DatabaseURL        string
	RefreshInterval    time.Duration
	DriverPollInterval time.Duration
	AllowedOrigins     []string
}

// Load reads the portal configuration from the environment.
// Call godotenv.Load() first if a .env file should be honored.
func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		APIBaseURL:         strings.TrimRight(getenv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		AreaAPIBaseURL:     strings.TrimRight(getenv("AREA_API_BASE_URL", "https://swms-area-api.onrender.com"), "/"),
		AreaAPITimeout:     getenvDuration("AREA_API_TIMEOUT", 30*time.Second),
		AreaCacheTTL:       getenvDuration("AREA_CACHE_TTL", 10*time.Minute),
		StoragePath:        getenv("STORAGE_PATH", ".swms/storage.json"),
		StorageNamespace:   getenv("STORAGE_NAMESPACE", "swms"),
		RedisURL:           getenv("REDIS_URL", ""),
		DatabaseURL:        getenv("DATABASE_URL", ""),
		RefreshInterval:    getenvDuration("REFRESH_INTERVAL", 30*time.Second),
		DriverPollInterval: getenvDuration("DRIVER_POLL_INTERVAL", 5*time.Second),
		AllowedOrigins:     getenvList("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
