package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportREST   = "rest"
	TransportSDK    = "sdk"
	TransportVertex = "vertex"

	ModePrompt      = "prompt"
	ModePassthrough = "passthrough"
)

type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Relay  RelayConfig
	CORS   CORSConfig
	App    AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	VertexEndpoint string
	Transport      string
	Timeout        time.Duration
}

type RelayConfig struct {
	Mode         string
	MaxBodyBytes int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 75*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL:        strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
			VertexEndpoint: getEnv("GEMINI_VERTEX_ENDPOINT", "https://aiplatform.googleapis.com/"),
			Transport:      strings.ToLower(getEnv("GEMINI_TRANSPORT", TransportREST)),
			Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Relay: RelayConfig{
			Mode:         strings.ToLower(getEnv("RELAY_MODE", ModePrompt)),
			MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 1<<20)),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "todo-suggest-relay"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set, suggestion requests will fail")
	}

	return cfg, nil
}

// Validate checks static settings only. A missing API key is reported per
// request by the relay, not here.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Gemini.Transport {
	case TransportREST, TransportSDK, TransportVertex:
	default:
		return fmt.Errorf("GEMINI_TRANSPORT must be one of %q, %q, %q, got %q",
			TransportREST, TransportSDK, TransportVertex, c.Gemini.Transport)
	}

	switch c.Relay.Mode {
	case ModePrompt, ModePassthrough:
	default:
		return fmt.Errorf("RELAY_MODE must be %q or %q, got %q", ModePrompt, ModePassthrough, c.Relay.Mode)
	}

	if c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL is required")
	}

	if c.Relay.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
