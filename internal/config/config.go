package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds blob storage settings.
// Backend selects the implementation: "local" (default) or "minio".
type StorageConfig struct {
	Backend     string
	LocalPath   string
	MaxFileSize int64
	MinIO       MinIOConfig
}

// MinIOConfig holds object storage settings for the S3-compatible backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OllamaConfig holds settings for the external Ollama model server used for
// OCR, text generation and embeddings. The three timeouts are independent
// knobs; the call kinds have very different latency profiles.
type OllamaConfig struct {
	BaseURL              string
	Enabled              bool
	OCRModel             string
	GenerationModel      string
	EmbeddingModel       string
	OCRTimeoutSec        int
	GenerationTimeoutSec int
	EmbeddingTimeoutSec  int
}

// AuthConfig holds settings for bearer-token verification.
type AuthConfig struct {
	JWTSecret string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Storage  StorageConfig
	Ollama   OllamaConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			LocalPath:   getEnv("STORAGE_PATH", "./data/documents"),
			MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 52428800), // 50 MiB
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Ollama: OllamaConfig{
			BaseURL:              getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Enabled:              getEnvBool("OLLAMA_ENABLED", true),
			OCRModel:             getEnv("OCR_MODEL", "deepseek-ocr:latest"),
			GenerationModel:      getEnv("GENERATION_MODEL", "qwen2.5:7b"),
			EmbeddingModel:       getEnv("EMBEDDING_MODEL", "nomic-embed-text:latest"),
			OCRTimeoutSec:        getEnvInt("OCR_TIMEOUT_SEC", 60),
			GenerationTimeoutSec: getEnvInt("GENERATION_TIMEOUT_SEC", 30),
			EmbeddingTimeoutSec:  getEnvInt("EMBEDDING_TIMEOUT_SEC", 30),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
