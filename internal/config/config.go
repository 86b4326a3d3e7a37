package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Port   string
	Model  ModelConfig
	Chat   ChatConfig
	Server ServerConfig
	Log    LogConfig
}

// ModelConfig holds classifier checkpoint settings.
type ModelConfig struct {
	Path           string
	ORTLibPath     string
	RequireTrained bool
	Seed           uint64
}

// ChatConfig holds the generative-language credentials.
type ChatConfig struct {
	APIKey string
	Model  string
}

// ServerConfig holds HTTP limits.
type ServerConfig struct {
	MaxUploadBytes int64
}

// LogConfig holds slog settings.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// ErrMissingAPIKey is reported by Validate when GEMINI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set; add it to the environment or a .env file")

// Load reads a .env file if one exists, then builds the config from
// environment variables with defaults. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() Config {
	modelPath := getenv("MODEL_PATH", filepath.Join("models", "waste_classification_model.onnx"))
	return Config{
		Port: getenv("PORT", "5000"),
		Model: ModelConfig{
			Path:           modelPath,
			ORTLibPath:     getenv("ONNXRUNTIME_LIB", filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")),
			RequireTrained: getenvBool("REQUIRE_TRAINED_CHECKPOINT", false),
			Seed:           getenvUint("FALLBACK_SEED", 42),
		},
		Chat: ChatConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getenv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		},
		Server: ServerConfig{
			MaxUploadBytes: getenvInt("MAX_UPLOAD_BYTES", 10<<20),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Chat.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("MODEL_PATH must not be empty"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
