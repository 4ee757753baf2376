package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCarrierAPIURL = "http://localhost:8000"
	DefaultORSBaseURL    = "https://api.openrouteservice.org"
)

// Server configures the carrier search API (cmd/server, cmd/dbtool).
type Server struct {
	Port             string
	DBDriver         string
	DBPath           string
	DatabaseURL      string
	SeedPath         string
	CORSOrigins      []string
	SearchRatePerSec float64
	SearchRateBurst  int
}

// Portal configures the search portal (cmd/portal).
type Portal struct {
	Port           string
	CarrierAPIURL  string
	StorageBackend string
	DBPath         string
	DatabaseURL    string
	RedisAddr      string
	ORSAPIKey      string
	ORSBaseURL     string
	CORSOrigins    []string
}

// LoadDotEnv reads .env into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid number, using default")
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadServer() Server {
	return Server{
		Port:             Get("PORT", "8000"),
		DBDriver:         Get("DB_DRIVER", "sqlite"),
		DBPath:           Get("DB_PATH", "data/carriers.db"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		SeedPath:         Get("SEED_PATH", ""),
		CORSOrigins:      getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SearchRatePerSec: getFloat("SEARCH_RATE_PER_SEC", 20),
		SearchRateBurst:  getInt("SEARCH_RATE_BURST", 40),
	}
}

func LoadPortal() Portal {
	return Portal{
		Port:           Get("PORT", "8080"),
		CarrierAPIURL:  Get("CARRIER_API_URL", DefaultCarrierAPIURL),
		StorageBackend: Get("STORAGE_BACKEND", "sqlite"),
		DBPath:         Get("DB_PATH", "data/portal.db"),
		DatabaseURL:    Get("DATABASE_URL", ""),
		RedisAddr:      Get("REDIS_ADDR", "localhost:6379"),
		ORSAPIKey:      Get("ORS_API_KEY", ""),
		ORSBaseURL:     Get("ORS_BASE_URL", DefaultORSBaseURL),
		CORSOrigins:    getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}
