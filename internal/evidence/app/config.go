package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./evidence.db)

	StaffJWTSecret  string // Required: shared secret for back-office JWT verification
	StaffJWTIssuer  string // Optional: expected issuer claim on staff tokens (default: probatio-dashboard)
	StaffAPIKeyHash string // Optional: Argon2id hash of the machine-caller API key; empty disables key auth

	AuthorityURL    string // Required: trusted timestamp authority base URL
	AuthorityAPIKey string // Optional: bearer key for the authority
	LedgerURL       string // Required: ledger base URL
	LedgerAPIKey    string // Optional: bearer key for the ledger
	NotifierURL     string // Required: messaging gateway base URL
	NotifierAPIKey  string // Optional: bearer key for the gateway

	OTPTTL        time.Duration // Optional: passcode redemption window (default: 10m)
	TokenTTL      time.Duration // Optional: default access window for new documents (default: 168h)
	SweepInterval time.Duration // Optional: escalation sweep interval (default: 5m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("EVIDENCE_DATABASE_FILE", "evidence.db"),

		StaffJWTSecret:  os.Getenv("STAFF_JWT_SECRET"),
		StaffJWTIssuer:  getEnvOrDefault("STAFF_JWT_ISSUER", "probatio-dashboard"),
		StaffAPIKeyHash: os.Getenv("STAFF_API_KEY_HASH"),

		AuthorityURL:    os.Getenv("TIMESTAMP_AUTHORITY_URL"),
		AuthorityAPIKey: os.Getenv("TIMESTAMP_AUTHORITY_API_KEY"),
		LedgerURL:       os.Getenv("LEDGER_URL"),
		LedgerAPIKey:    os.Getenv("LEDGER_API_KEY"),
		NotifierURL:     os.Getenv("NOTIFIER_URL"),
		NotifierAPIKey:  os.Getenv("NOTIFIER_API_KEY"),

		OTPTTL:        getEnvDurationOrDefault("OTP_TTL", 10*time.Minute),
		TokenTTL:      getEnvDurationOrDefault("TOKEN_TTL", 7*24*time.Hour),
		SweepInterval: getEnvDurationOrDefault("SWEEP_INTERVAL", 5*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
