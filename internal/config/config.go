package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Supported values for the enumerated settings.
//
//nolint:gochecknoglobals // fixed vocabularies
var (
	sessionStores = []string{"memory", "redis"}
	agentBackends = []string{"gemini", "ollama", "canned"}
	archiveKinds  = []string{"", "sqlite", "postgres"}
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIKey      string //nolint:gosec // G117: inbound API key config
	Environment string
	Tracing     bool
	Server      ServerConfig
	Detection   DetectionConfig
	Session     SessionConfig
	Redis       RedisConfig
	Agent       AgentConfig
	Callback    CallbackConfig
	Archive     ArchiveConfig
	Slack       SlackConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// DetectionConfig holds scam scoring settings.
type DetectionConfig struct {
	ScamThreshold float64
}

// SessionConfig selects the session store and its retention.
type SessionConfig struct {
	Store  string
	MaxAge time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
	// LockTTL bounds the cross-instance session lock and the wait for it.
	LockTTL time.Duration
}

// AgentConfig selects and configures the reply generator.
type AgentConfig struct {
	Backend       string
	Model         string
	Timeout       time.Duration
	GeminiAPIKey  string //nolint:gosec // G117: model API key config
	GeminiBaseURL string
	OllamaBaseURL string
}

// CallbackConfig holds the evaluator delivery settings.
type CallbackConfig struct {
	URL     string
	Timeout time.Duration
}

// ArchiveConfig selects where delivered reports are archived. An empty Kind disables archiving.
type ArchiveConfig struct {
	Kind        string
	SQLitePath  string
	DatabaseURL string //nolint:gosec // G117: DB connection config
	MaxConns    int
}

// SlackConfig holds analyst alert settings.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	readTimeout, err := getEnvDuration("HONEYPOT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("HONEYPOT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("HONEYPOT_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("HONEYPOT_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	threshold, err := getEnvFloat("HONEYPOT_SCAM_THRESHOLD", 0.6)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxAge, err := getEnvDuration("HONEYPOT_SESSION_MAX_AGE", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("HONEYPOT_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisLockTTL, err := getEnvDuration("HONEYPOT_REDIS_LOCK_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	agentTimeout, err := getEnvDuration("HONEYPOT_AGENT_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	callbackTimeout, err := getEnvDuration("HONEYPOT_CALLBACK_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("HONEYPOT_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tracing, err := getEnvBool("HONEYPOT_TRACING", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		APIKey:      getEnv("HONEYPOT_API_KEY", ""),
		Environment: getEnv("HONEYPOT_ENVIRONMENT", "development"),
		Tracing:     tracing,
		Server: ServerConfig{
			Addr:           getEnv("HONEYPOT_SERVER_ADDR", ":8000"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    getEnvList("HONEYPOT_CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Detection: DetectionConfig{
			ScamThreshold: threshold,
		},
		Session: SessionConfig{
			Store:  strings.ToLower(getEnv("HONEYPOT_SESSION_STORE", "memory")),
			MaxAge: maxAge,
		},
		Redis: RedisConfig{
			Addr:     getEnv("HONEYPOT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("HONEYPOT_REDIS_PASSWORD", ""),
			DB:       redisDB,
			LockTTL:  redisLockTTL,
		},
		Agent: AgentConfig{
			Backend:       strings.ToLower(getEnv("HONEYPOT_AGENT_BACKEND", "gemini")),
			Model:         getEnv("HONEYPOT_AGENT_MODEL", ""),
			Timeout:       agentTimeout,
			GeminiAPIKey:  getEnv("HONEYPOT_GEMINI_API_KEY", ""),
			GeminiBaseURL: getEnv("HONEYPOT_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/"),
			OllamaBaseURL: getEnv("HONEYPOT_OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Callback: CallbackConfig{
			URL:     getEnv("HONEYPOT_CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
			Timeout: callbackTimeout,
		},
		Archive: ArchiveConfig{
			Kind:        strings.ToLower(getEnv("HONEYPOT_ARCHIVE", "")),
			SQLitePath:  getEnv("HONEYPOT_SQLITE_PATH", "./data/honeypot.db"),
			DatabaseURL: getEnv("HONEYPOT_DATABASE_URL", ""),
			MaxConns:    dbMaxConns,
		},
		Slack: SlackConfig{
			BotToken: getEnv("HONEYPOT_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("HONEYPOT_SLACK_CHANNEL", ""),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("HONEYPOT_API_KEY is required")
	}

	if c.Detection.ScamThreshold <= 0 || c.Detection.ScamThreshold > 1 {
		return fmt.Errorf("HONEYPOT_SCAM_THRESHOLD must be in (0, 1], got %g", c.Detection.ScamThreshold)
	}

	if !slices.Contains(sessionStores, c.Session.Store) {
		return fmt.Errorf("HONEYPOT_SESSION_STORE must be one of %v, got %q", sessionStores, c.Session.Store)
	}
	if !slices.Contains(agentBackends, c.Agent.Backend) {
		return fmt.Errorf("HONEYPOT_AGENT_BACKEND must be one of %v, got %q", agentBackends, c.Agent.Backend)
	}
	if c.Agent.Backend == "gemini" && c.Agent.GeminiAPIKey == "" {
		return errors.New("HONEYPOT_GEMINI_API_KEY is required when HONEYPOT_AGENT_BACKEND=gemini")
	}
	if !slices.Contains(archiveKinds, c.Archive.Kind) {
		return fmt.Errorf("HONEYPOT_ARCHIVE must be one of sqlite, postgres or empty, got %q", c.Archive.Kind)
	}
	if c.Archive.Kind == "postgres" && c.Archive.DatabaseURL == "" {
		return errors.New("HONEYPOT_DATABASE_URL is required when HONEYPOT_ARCHIVE=postgres")
	}
	if c.Slack.BotToken != "" && c.Slack.Channel == "" {
		return errors.New("HONEYPOT_SLACK_CHANNEL is required when HONEYPOT_SLACK_BOT_TOKEN is set")
	}

	// Bounds checks.
	if c.Archive.MaxConns < 1 {
		return fmt.Errorf("HONEYPOT_DB_MAX_CONNS must be >= 1, got %d", c.Archive.MaxConns)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("HONEYPOT_RATE_LIMIT_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("HONEYPOT_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("HONEYPOT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HONEYPOT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("HONEYPOT_SESSION_MAX_AGE must be positive, got %s", c.Session.MaxAge)
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("HONEYPOT_REDIS_LOCK_TTL must be positive, got %s", c.Redis.LockTTL)
	}

	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("HONEYPOT_AGENT_TIMEOUT must be positive, got %s", c.Agent.Timeout)
	}
	if c.Callback.Timeout <= 0 {
		return fmt.Errorf("HONEYPOT_CALLBACK_TIMEOUT must be positive, got %s", c.Callback.Timeout)
	}

	if slices.Contains(c.Server.CORSOrigins, "*") && c.Environment == "production" {
		log.Warn().Msg("HONEYPOT_CORS_ORIGINS=* allows any origin; restrict it for production")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
