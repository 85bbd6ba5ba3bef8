package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Backend API configuration
	APIBaseURL     string        `json:"api_base_url"`
	BackendTimeout time.Duration `json:"backend_timeout"`
	HTTPClientPool int           `json:"http_client_pool"`

	// Browser-facing download URL; defaults to the backend download endpoint
	ReportDownloadURL string `json:"report_download_url"`

	// Redis configuration (CEP lookup cache)
	RedisURI      string        `json:"redis_uri"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
	CEPCacheTTL   time.Duration `json:"cep_cache_ttl"`
	CEPCacheOn    bool          `json:"cep_cache_enabled"`

	// Page behaviour
	EditRedirectDelay      time.Duration `json:"edit_redirect_delay"`
	SuccessMessageTTL      time.Duration `json:"success_message_ttl"`
	ReportGenerateCooldown time.Duration `json:"report_generate_cooldown"`
	PageSessionTTL         time.Duration `json:"page_session_ttl"`

	// CORS
	AllowedOrigins []string `json:"allowed_origins"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func LoadConfig() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "3000"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	apiBaseURL := strings.TrimRight(getEnvOrDefault("API_BASE_URL", "http://localhost:8080"), "/")
	if u, err := url.Parse(apiBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL: %q", apiBaseURL)
	}

	backendTimeout, err := time.ParseDuration(getEnvOrDefault("BACKEND_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cepCacheTTL, err := time.ParseDuration(getEnvOrDefault("CEP_CACHE_TTL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid CEP_CACHE_TTL: %w", err)
	}

	editRedirectDelay, err := time.ParseDuration(getEnvOrDefault("EDIT_REDIRECT_DELAY", "2s"))
	if err != nil {
		return fmt.Errorf("invalid EDIT_REDIRECT_DELAY: %w", err)
	}

	successMessageTTL, err := time.ParseDuration(getEnvOrDefault("SUCCESS_MESSAGE_TTL", "5s"))
	if err != nil {
		return fmt.Errorf("invalid SUCCESS_MESSAGE_TTL: %w", err)
	}

	reportCooldown, err := time.ParseDuration(getEnvOrDefault("REPORT_GENERATE_COOLDOWN", "3s"))
	if err != nil {
		return fmt.Errorf("invalid REPORT_GENERATE_COOLDOWN: %w", err)
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Backend API configuration
		APIBaseURL:        apiBaseURL,
		BackendTimeout:    backendTimeout,
		HTTPClientPool:    getEnvAsIntOrDefault("HTTP_CLIENT_POOL", 20),
		ReportDownloadURL: getEnvOrDefault("REPORT_DOWNLOAD_URL", apiBaseURL+"/api/relatorios/download"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		CEPCacheTTL:   cepCacheTTL,
		CEPCacheOn:    getEnvAsBoolOrDefault("CEP_CACHE_ENABLED", false),

		// Page behaviour
		EditRedirectDelay:      editRedirectDelay,
		SuccessMessageTTL:      successMessageTTL,
		ReportGenerateCooldown: reportCooldown,
		PageSessionTTL:         getEnvAsDurationOrDefault("PAGE_SESSION_TTL", 30*time.Minute),

		AllowedOrigins: parseCommaSeparatedList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		// Tracing configuration
		TracingEnabled:  getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns environment variable as int or default if not set or invalid
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsDurationOrDefault returns environment variable as duration or default if not set or invalid
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsBoolOrDefault returns environment variable as bool or default if not set or invalid
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseCommaSeparatedList splits a comma separated value, trimming blanks
func parseCommaSeparatedList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
