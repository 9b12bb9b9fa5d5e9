package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Commerce backend. Empty URL forces fallback behavior everywhere:
	// static catalog, mail-relay contact, payments disabled.
	BackendBaseURL string

	// Payment gateway (Mercado Pago). Absence disables credit_card.
	MercadoPagoPublicKey string

	// Checkout polling (pix settlement)
	PollInterval time.Duration
	PollBudget   time.Duration

	// Session registry
	SessionTTL time.Duration

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Fallback collaborators
	StaticCatalogPath string
	FormRelayEndpoint string
	FormRelaySubject  string
	FormRelaySource   string

	// Company defaults (fallback for GET /v1/company/info)
	CompanyName  string
	CompanyEmail string

	// Admin auth
	JWTSecret         string
	JWTAccessTTL      time.Duration
	AdminUser         string
	AdminPasswordHash string // bcrypt hash; empty disables admin routes

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendBaseURL:       getEnv("BACKEND_URL", ""),
		MercadoPagoPublicKey: getEnv("MERCADO_PAGO_PUBLIC_KEY", ""),

		PollInterval: getEnvDuration("PAYMENT_POLL_INTERVAL", 3*time.Second),
		PollBudget:   getEnvDuration("PAYMENT_POLL_BUDGET", 10*time.Minute),

		SessionTTL: getEnvDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 20*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		StaticCatalogPath: getEnv("STATIC_CATALOG_PATH", "./data/products.json"),
		FormRelayEndpoint: getEnv("FORM_RELAY_ENDPOINT", "https://formsubmit.co/ajax/contato@3dstuff.com.br"),
		FormRelaySubject:  getEnv("FORM_RELAY_SUBJECT", "Nova mensagem pelo site 3D Stuff"),
		FormRelaySource:   getEnv("FORM_RELAY_SOURCE", "3dstuff.com.br"),

		CompanyName:  getEnv("COMPANY_NAME", "3D Stuff"),
		CompanyEmail: getEnv("COMPANY_EMAIL", "contato@3dstuff.com.br"),

		JWTSecret:         getEnv("JWT_SECRET", "store-default-dev-secret-change-me"),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// PaymentsEnabled reports whether checkout submission is possible at all.
func (c *Config) PaymentsEnabled() bool {
	return c.BackendBaseURL != ""
}

// CreditCardEnabled reports whether the credit_card method is available.
func (c *Config) CreditCardEnabled() bool {
	return c.PaymentsEnabled() && c.MercadoPagoPublicKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
