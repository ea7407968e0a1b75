package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is built once in main and passed by reference into every
// component; nothing reads the environment after startup.
type Config struct {
	HTTPAddr string
	Env      string
	LogLevel string

	// Persistence. When DSN is empty the data endpoints answer 503
	// instead of the process refusing to start.
	DatabaseDSN    string
	DBMaxIdleConns int
	DBMaxOpenConns int
	DBLogLevel     string

	// Identity provider.
	AuthJWTSecret  string
	AllowDevHeader bool

	// Authorization.
	AdminEmails []string

	// CORS.
	AllowedOrigins []string

	// Outbound webhooks, all optional.
	StatusEmailWebhookURL string
	SheetWebhookURL       string
	AdminNotifyWebhookURL string

	// Optional audit event stream.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional snapshot archival.
	BackupS3Bucket string

	MetricsPrefix string
	RateLimitRPM  int
}

func Load() *Config {
	// Missing .env is fine; real deployments use plain env vars.
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getEnv("ADDR", ":"+getEnv("PORT", "8787")),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDSN:    getEnv("DATABASE_URL", ""),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBLogLevel:     getEnv("DB_LOG_LEVEL", ""),

		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		AllowDevHeader: getEnvBool("ALLOW_DEV_HEADER", false),

		AdminEmails: splitCSVLower(getEnv("ADMIN_EMAILS", "")),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS",
			"http://localhost:5173,http://localhost:8080,http://localhost:8081")),

		StatusEmailWebhookURL: getEnv("STATUS_EMAIL_WEBHOOK_URL", ""),
		SheetWebhookURL:       getEnv("SHEET_WEBHOOK_URL", ""),
		AdminNotifyWebhookURL: getEnv("ADMIN_NOTIFY_WEBHOOK_URL", ""),

		KafkaBrokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_ACTIVITY_TOPIC", "activity-events"),

		BackupS3Bucket: getEnv("BACKUP_S3_BUCKET", ""),

		MetricsPrefix: getEnv("METRICS_PREFIX", "acrecap"),
		RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", 120),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSVLower(s string) []string {
	var out []string
	for _, p := range splitCSV(s) {
		out = append(out, strings.ToLower(p))
	}
	return out
}
