package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DispatchChannelLink  = "link"
	DispatchChannelCloud = "cloud"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// WhatsApp hand-off
	Destination     string
	DispatchChannel string
	WhatsAppToken   string
	PhoneNumberID   string
	GraphAPIBaseURL string

	// Funnel / registration sessions
	TypingDelay     time.Duration
	SessionTTL      time.Duration
	SessionCapacity int
	CatalogPath     string
	CORSOrigins     []string

	// Dispatch audit database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Destination:     getEnv("WHATSAPP_DESTINATION", "573116248414"),
		DispatchChannel: strings.ToLower(getEnv("DISPATCH_CHANNEL", DispatchChannelLink)),
		WhatsAppToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:   getEnv("PHONE_NUMBER_ID", ""),
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v19.0"),

		TypingDelay:     getDuration("TYPING_DELAY", 800*time.Millisecond),
		SessionTTL:      getDuration("SESSION_TTL", 30*time.Minute),
		SessionCapacity: getInt("SESSION_CAPACITY", 10000),
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:     getEnv("DB_PATH", "./elite-gym.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "elite_gym"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	if cfg.DispatchChannel != DispatchChannelLink && cfg.DispatchChannel != DispatchChannelCloud {
		log.Printf("Warning: unknown DISPATCH_CHANNEL %q, using %q", cfg.DispatchChannel, DispatchChannelLink)
		cfg.DispatchChannel = DispatchChannelLink
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d < 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s %q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
