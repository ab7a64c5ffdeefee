package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the Yelp Fusion API key.
const APIKeyEnv = "yelp_api_key"

// DefaultSearchURL is the Yelp Fusion business-search endpoint.
const DefaultSearchURL = "https://api.yelp.com/v3/businesses/search"

// ErrMissingAPIKey is returned by Load when yelp_api_key is unset.
var ErrMissingAPIKey = errors.New("config: " + APIKeyEnv + " is not set")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	YelpAPIKey    string
	YelpSearchURL string

	DashboardAddr string
	MapboxToken   string
	Serve         bool

	LogLevel      string
	LogFormat     string
	LogOutput     string
	LogMaxAgeDays int

	CSVOutputPath string
	PostgresDSN   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SnapshotPath string
	ChromeBin    string
}

// Load reads the .env file and returns a populated Config struct.
// The API key is the only required value; everything else has a fallback.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		YelpAPIKey:    os.Getenv(APIKeyEnv),
		YelpSearchURL: getEnv("YELP_SEARCH_URL", DefaultSearchURL),

		DashboardAddr: getEnv("DASHBOARD_ADDR", ":8501"),
		MapboxToken:   getEnv("MAPBOX_API_KEY", ""),
		Serve:         getEnvBool("SERVE", true),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 0),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "ramen-runs"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),
		ChromeBin:    getEnv("CHROME_BIN", ""),
	}

	if cfg.YelpAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

// ExportsEnabled reports whether any optional run export is configured.
func (c *Config) ExportsEnabled() bool {
	return c.CSVOutputPath != "" || c.PostgresDSN != "" || c.MinioEndpoint != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
