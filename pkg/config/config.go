package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret      string
	JWTIssuer      string
	JWTTTLHours    int
	BootstrapAdmin bool

	CORSOrigins string

	// LLM provider: "gemini" (default) or "openrouter".
	LLMProvider       string
	GeminiAPIKey      string
	GeminiModel       string
	OpenRouterAPIKey  string
	OpenRouterBase    string
	OpenRouterModel   string
	OpenRouterTitle   string
	OpenRouterReferer string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	PublicBaseURL       string
	RequestDeadlineDays int

	// Blob storage: local disk unless S3Bucket is set.
	UploadDir         string
	S3Bucket          string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	RabbitMQURL string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:      getEnv("JWT_ISSUER", "candidateverify"),
		JWTTTLHours:    getEnvInt("JWT_TTL_HOURS", 24),
		BootstrapAdmin: getEnvBool("BOOTSTRAP_ADMIN", true),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBase:    os.Getenv("OPENROUTER_BASE_URL"),
		OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
		OpenRouterTitle:   getEnv("OPENROUTER_APP_TITLE", "CandidateVerify"),
		OpenRouterReferer: os.Getenv("OPENROUTER_REFERER"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 465),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", "https://verify.traqcheck.com"),
		RequestDeadlineDays: getEnvInt("REQUEST_DEADLINE_DAYS", 7),

		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUsername
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
