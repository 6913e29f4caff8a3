package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	S3         S3Config
	Upload     UploadConfig
	Scheduler  SchedulerConfig
	Embedding  EmbeddingConfig
	Enrichment EnrichmentConfig
	Retry      RetryConfig
	LLM        LLMConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// S3Config holds S3 storage configuration
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// UploadConfig governs inbound résumé file handling.
type UploadConfig struct {
	Directory         string
	AllowedExtensions []string
	MaxBytes          int64
}

// SchedulerConfig governs the worker scheduler's loop cadence.
type SchedulerConfig struct {
	Enabled            bool
	PollInterval       time.Duration
	InitialDelay       time.Duration
	StaleThreshold     time.Duration
	StaleCheckInterval time.Duration
	CleanupHour        int
	CleanupMinute      int
	MetricsInterval    time.Duration
	BatchSize          int
	WorkerID           string
	RetentionDays      int
}

// EmbeddingConfig governs embedding batch size and fallback dimensionality.
type EmbeddingConfig struct {
	BatchSize  int
	Dimensions int
}

// EnrichmentConfig governs profile enrichment behaviour and external credentials.
type EnrichmentConfig struct {
	StalenessTTLDays        int
	SourceSelectionEnabled  bool
	MultiPassEnabled        bool
	MultiPassBorderlineMin  float64
	MultiPassBorderlineMax  float64
	TavilyAPIKey            string
	GithubToken             string
	TwitterBearerToken      string
}

// RetryConfig governs job-queue retry backoff.
type RetryConfig struct {
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxAttempts int
}

// LLMConfig points at the OpenAI-compatible chat/embedding endpoints.
type LLMConfig struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	PromptsPath    string
	Timeout        time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "talentpipe"),
			Password:        getEnv("DB_PASSWORD", "talentpipe"),
			DBName:          getEnv("DB_NAME", "talentpipe"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "eu-central"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Upload: UploadConfig{
			Directory:         getEnv("UPLOAD_DIRECTORY", "./uploads"),
			AllowedExtensions: getEnvAsList("UPLOAD_ALLOWED_EXTENSIONS", []string{".pdf", ".doc", ".docx"}),
			MaxBytes:          getEnvAsInt64("UPLOAD_MAX_BYTES", 50*1024*1024),
		},
		Scheduler: SchedulerConfig{
			Enabled:            getEnvAsBool("SCHEDULER_ENABLED", false),
			PollInterval:       getEnvAsDuration("SCHEDULER_POLL_INTERVAL", 5*time.Second),
			InitialDelay:       getEnvAsDuration("SCHEDULER_INITIAL_DELAY", 10*time.Second),
			StaleThreshold:     getEnvAsDuration("SCHEDULER_STALE_THRESHOLD", 15*time.Minute),
			StaleCheckInterval: getEnvAsDuration("SCHEDULER_STALE_CHECK_INTERVAL", 60*time.Second),
			CleanupHour:        getEnvAsInt("SCHEDULER_CLEANUP_HOUR", 2),
			CleanupMinute:      getEnvAsInt("SCHEDULER_CLEANUP_MINUTE", 0),
			MetricsInterval:    getEnvAsDuration("SCHEDULER_METRICS_INTERVAL", 5*time.Minute),
			BatchSize:          getEnvAsInt("SCHEDULER_BATCH_SIZE", 5),
			WorkerID:           getEnv("SCHEDULER_WORKER_ID", ""),
			RetentionDays:      getEnvAsInt("SCHEDULER_RETENTION_DAYS", 30),
		},
		Embedding: EmbeddingConfig{
			BatchSize:  getEnvAsInt("EMBEDDING_BATCH_SIZE", 10),
			Dimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
		},
		Enrichment: EnrichmentConfig{
			StalenessTTLDays:       getEnvAsInt("ENRICHMENT_STALENESS_TTL_DAYS", 7),
			SourceSelectionEnabled: getEnvAsBool("ENRICHMENT_SOURCE_SELECTION_ENABLED", true),
			MultiPassEnabled:       getEnvAsBool("ENRICHMENT_MULTI_PASS_ENABLED", true),
			MultiPassBorderlineMin: getEnvAsFloat("ENRICHMENT_MULTI_PASS_BORDERLINE_MIN", 50),
			MultiPassBorderlineMax: getEnvAsFloat("ENRICHMENT_MULTI_PASS_BORDERLINE_MAX", 80),
			TavilyAPIKey:           getEnv("ENRICHMENT_TAVILY_API_KEY", ""),
			GithubToken:            getEnv("ENRICHMENT_GITHUB_TOKEN", ""),
			TwitterBearerToken:     getEnv("ENRICHMENT_TWITTER_BEARER_TOKEN", ""),
		},
		Retry: RetryConfig{
			BaseBackoff: getEnvAsDuration("RETRY_BASE_BACKOFF", 30*time.Second),
			MaxBackoff:  getEnvAsDuration("RETRY_MAX_BACKOFF", 15*time.Minute),
			MaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
			APIKey:         getEnv("LLM_API_KEY", ""),
			ChatModel:      getEnv("LLM_CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			PromptsPath:    getEnv("LLM_PROMPTS_PATH", "./config/prompts.yaml"),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
	}

	if cfg.Scheduler.WorkerID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "worker"
		}
		cfg.Scheduler.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}
