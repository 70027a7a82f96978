package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/pkg/httpx"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile  string // Path to SQLite database file (default: ./licensing.db)
	PublicKeyFile string // Path to the PEM license verification key
	PublicKey     string // Inline PEM, takes precedence over PublicKeyFile

	AdminJWTSecret     string               // HS256 secret for admin JWTs, empty disables JWT auth
	AdminServiceTokens []httpx.ServiceToken // From ADMIN_SERVICE_TOKENS "actor:hash;actor:hash"

	AlertStateBackend string        // sqlite, redis or memory (default: sqlite)
	RedisURL          string        // Required for the redis backend
	AlertCooldown     time.Duration // License alert cooldown (default: 24h)

	AdminEmail      string
	AdminPhone      string
	AlertFrom       string
	SMTPHost        string
	SMTPPort        int // (default: 587)
	SMTPUser        string
	SMTPPass        string
	SMSWebhookURL   string
	SMSWebhookToken string
	OutboxFile      string // JSON lines fallback for channels without a provider

	NotifyWorkers     int
	NotifyQueueSize   int
	NotifyMaxAttempts int

	MonitoringEnabled    bool
	MonitorWindow        time.Duration
	MonitorInterval      time.Duration
	SlowRequestThreshold time.Duration
	ErrorAlertThreshold  int
	FailedAuthThreshold  int
	SlowAlertThreshold   int
	MonitorAlertCooldown time.Duration

	ExpiryScanEnabled  bool
	ExpiryScanInterval time.Duration
}

func LoadConfig() Config {
	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile:  getEnvOrDefault("LICENSE_DATABASE_FILE", "licensing.db"),
		PublicKeyFile: os.Getenv("LICENSE_PUBLIC_KEY_FILE"),
		PublicKey:     os.Getenv("LICENSE_PUBLIC_KEY"),

		AdminJWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),
		AdminServiceTokens: parseServiceTokens(os.Getenv("ADMIN_SERVICE_TOKENS")),

		AlertStateBackend: strings.ToLower(getEnvOrDefault("ALERT_STATE_BACKEND", "sqlite")),
		RedisURL:          os.Getenv("REDIS_URL"),
		AlertCooldown:     getEnvDurationOrDefault("ALERT_COOLDOWN", 24*time.Hour),

		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPhone:      os.Getenv("ADMIN_PHONE"),
		AlertFrom:       getEnvOrDefault("ALERT_FROM", "daftar@localhost"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		SMSWebhookURL:   os.Getenv("SMS_WEBHOOK_URL"),
		SMSWebhookToken: os.Getenv("SMS_WEBHOOK_TOKEN"),
		OutboxFile:      os.Getenv("NOTIFY_OUTBOX_FILE"),

		NotifyWorkers:     getEnvIntOrDefault("NOTIFY_WORKERS", 2),
		NotifyQueueSize:   getEnvIntOrDefault("NOTIFY_QUEUE_SIZE", 256),
		NotifyMaxAttempts: getEnvIntOrDefault("NOTIFY_MAX_ATTEMPTS", 3),

		MonitoringEnabled:    getEnvBoolOrDefault("MONITORING_ENABLED", true),
		MonitorWindow:        getEnvDurationOrDefault("MONITOR_WINDOW", time.Hour),
		MonitorInterval:      getEnvDurationOrDefault("MONITOR_INTERVAL", 5*time.Minute),
		SlowRequestThreshold: getEnvDurationOrDefault("SLOW_REQUEST_THRESHOLD", 800*time.Millisecond),
		ErrorAlertThreshold:  getEnvIntOrDefault("ERROR_ALERT_THRESHOLD", 10),
		FailedAuthThreshold:  getEnvIntOrDefault("FAILED_AUTH_THRESHOLD", 20),
		SlowAlertThreshold:   getEnvIntOrDefault("SLOW_ALERT_THRESHOLD", 50),
		MonitorAlertCooldown: getEnvDurationOrDefault("MONITOR_ALERT_COOLDOWN", 24*time.Hour),

		ExpiryScanEnabled:  getEnvBoolOrDefault("EXPIRY_SCAN_ENABLED", true),
		ExpiryScanInterval: getEnvDurationOrDefault("EXPIRY_SCAN_INTERVAL", 24*time.Hour),
	}
}

// parseServiceTokens reads "actor:hash" pairs separated by semicolons. PHC
// hashes contain commas so those cannot be the separator. Malformed pairs are
// skipped.
func parseServiceTokens(raw string) []httpx.ServiceToken {
	var out []httpx.ServiceToken
	for _, pair := range strings.Split(raw, ";") {
		actor, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || actor == "" || hash == "" {
			continue
		}
		out = append(out, httpx.ServiceToken{Actor: actor, Hash: hash})
	}
	return out
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
