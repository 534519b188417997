package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "HONEYPOT_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "HONEYPOT_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "HONEYPOT_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "HONEYPOT_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "HONEYPOT_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "HONEYPOT_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "HONEYPOT_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "HONEYPOT_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "HONEYPOT_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "HONEYPOT_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "HONEYPOT_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "HONEYPOT_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "HONEYPOT_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "HONEYPOT_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "HONEYPOT_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "HONEYPOT_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "HONEYPOT_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "HONEYPOT_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "HONEYPOT_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "HONEYPOT_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "HONEYPOT_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "HONEYPOT_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "HONEYPOT_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "HONEYPOT_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "HONEYPOT_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "HONEYPOT_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "HONEYPOT_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "HONEYPOT_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "HONEYPOT_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "HONEYPOT_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "HONEYPOT_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "HONEYPOT_TEST_FLOAT_UNSET", setVal: nil, fallback: 0.6, want: 0.6},
		{name: "parses decimal", key: "HONEYPOT_TEST_FLOAT_DEC", setVal: strPtr("0.75"), fallback: 0, want: 0.75},
		{name: "parses integer", key: "HONEYPOT_TEST_FLOAT_INT", setVal: strPtr("20"), fallback: 0, want: 20},
		{name: "errors on text", key: "HONEYPOT_TEST_FLOAT_NAN", setVal: strPtr("high"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvFloat(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("HONEYPOT_TEST_LIST", " https://a.example , ,https://b.example")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("HONEYPOT_TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, getEnvList("HONEYPOT_TEST_LIST_UNSET", []string{"*"}))
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("HONEYPOT_API_KEY", "test-api-key")
	t.Setenv("HONEYPOT_AGENT_BACKEND", "canned")
}

func TestLoad_MissingAPIKey(t *testing.T) {
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "HONEYPOT_API_KEY")
}

func TestLoad_GeminiNeedsKey(t *testing.T) {
	t.Setenv("HONEYPOT_API_KEY", "k")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "HONEYPOT_GEMINI_API_KEY")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		{name: "threshold not a number", envKey: "HONEYPOT_SCAM_THRESHOLD", envVal: "high", errMsg: "HONEYPOT_SCAM_THRESHOLD"},
		{name: "threshold zero", envKey: "HONEYPOT_SCAM_THRESHOLD", envVal: "0", errMsg: "HONEYPOT_SCAM_THRESHOLD"},
		{name: "threshold above one", envKey: "HONEYPOT_SCAM_THRESHOLD", envVal: "1.5", errMsg: "HONEYPOT_SCAM_THRESHOLD"},
		{name: "unknown session store", envKey: "HONEYPOT_SESSION_STORE", envVal: "etcd", errMsg: "HONEYPOT_SESSION_STORE"},
		{name: "unknown agent backend", envKey: "HONEYPOT_AGENT_BACKEND", envVal: "gpt", errMsg: "HONEYPOT_AGENT_BACKEND"},
		{name: "unknown archive", envKey: "HONEYPOT_ARCHIVE", envVal: "mysql", errMsg: "HONEYPOT_ARCHIVE"},
		{name: "postgres without url", envKey: "HONEYPOT_ARCHIVE", envVal: "postgres", errMsg: "HONEYPOT_DATABASE_URL"},
		{name: "slack token without channel", envKey: "HONEYPOT_SLACK_BOT_TOKEN", envVal: "xoxb-1", errMsg: "HONEYPOT_SLACK_CHANNEL"},
		{name: "max age invalid", envKey: "HONEYPOT_SESSION_MAX_AGE", envVal: "forever", errMsg: "HONEYPOT_SESSION_MAX_AGE"},
		{name: "max age zero", envKey: "HONEYPOT_SESSION_MAX_AGE", envVal: "0s", errMsg: "HONEYPOT_SESSION_MAX_AGE"},
		{name: "agent timeout negative", envKey: "HONEYPOT_AGENT_TIMEOUT", envVal: "-1s", errMsg: "HONEYPOT_AGENT_TIMEOUT"},
		{name: "callback timeout zero", envKey: "HONEYPOT_CALLBACK_TIMEOUT", envVal: "0s", errMsg: "HONEYPOT_CALLBACK_TIMEOUT"},
		{name: "read timeout invalid", envKey: "HONEYPOT_SERVER_READ_TIMEOUT", envVal: "notduration", errMsg: "HONEYPOT_SERVER_READ_TIMEOUT"},
		{name: "write timeout zero", envKey: "HONEYPOT_SERVER_WRITE_TIMEOUT", envVal: "0s", errMsg: "HONEYPOT_SERVER_WRITE_TIMEOUT"},
		{name: "rate limit zero", envKey: "HONEYPOT_RATE_LIMIT_RPS", envVal: "0", errMsg: "HONEYPOT_RATE_LIMIT_RPS"},
		{name: "burst zero", envKey: "HONEYPOT_RATE_LIMIT_BURST", envVal: "0", errMsg: "HONEYPOT_RATE_LIMIT_BURST"},
		{name: "redis lock ttl zero", envKey: "HONEYPOT_REDIS_LOCK_TTL", envVal: "0s", errMsg: "HONEYPOT_REDIS_LOCK_TTL"},
		{name: "redis db not a number", envKey: "HONEYPOT_REDIS_DB", envVal: "abc", errMsg: "HONEYPOT_REDIS_DB"},
		{name: "db max conns zero", envKey: "HONEYPOT_DB_MAX_CONNS", envVal: "0", errMsg: "HONEYPOT_DB_MAX_CONNS"},
		{name: "tracing not a bool", envKey: "HONEYPOT_TRACING", envVal: "yes", errMsg: "HONEYPOT_TRACING"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test-api-key", cfg.APIKey)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Tracing)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.Server.RateLimitRPS, 1e-9)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)

	assert.InDelta(t, 0.6, cfg.Detection.ScamThreshold, 1e-9)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Redis.LockTTL)

	assert.Equal(t, "canned", cfg.Agent.Backend)
	assert.Empty(t, cfg.Agent.Model)
	assert.Equal(t, 15*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "https://generativelanguage.googleapis.com/", cfg.Agent.GeminiBaseURL)
	assert.Equal(t, "http://localhost:11434", cfg.Agent.OllamaBaseURL)

	assert.Equal(t, "https://hackathon.guvi.in/api/updateHoneyPotFinalResult", cfg.Callback.URL)
	assert.Equal(t, 10*time.Second, cfg.Callback.Timeout)

	assert.Empty(t, cfg.Archive.Kind)
	assert.Equal(t, "./data/honeypot.db", cfg.Archive.SQLitePath)
	assert.Equal(t, 10, cfg.Archive.MaxConns)

	assert.Empty(t, cfg.Slack.BotToken)
	assert.Empty(t, cfg.Slack.Channel)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		"HONEYPOT_API_KEY":              "prod-key",
		"HONEYPOT_ENVIRONMENT":          "production",
		"HONEYPOT_TRACING":              "true",
		"HONEYPOT_SERVER_ADDR":          ":9000",
		"HONEYPOT_SERVER_READ_TIMEOUT":  "5s",
		"HONEYPOT_SERVER_WRITE_TIMEOUT": "1m",
		"HONEYPOT_CORS_ORIGINS":         "https://a.example,https://b.example",
		"HONEYPOT_RATE_LIMIT_RPS":       "2.5",
		"HONEYPOT_RATE_LIMIT_BURST":     "5",
		"HONEYPOT_SCAM_THRESHOLD":       "0.75",
		"HONEYPOT_SESSION_STORE":        "Redis",
		"HONEYPOT_SESSION_MAX_AGE":      "12h",
		"HONEYPOT_REDIS_ADDR":           "redis:6380",
		"HONEYPOT_REDIS_PASSWORD":       "r3dis",
		"HONEYPOT_REDIS_DB":             "2",
		"HONEYPOT_REDIS_LOCK_TTL":       "45s",
		"HONEYPOT_AGENT_BACKEND":        "gemini",
		"HONEYPOT_AGENT_MODEL":          "gemini-1.5-flash",
		"HONEYPOT_AGENT_TIMEOUT":        "8s",
		"HONEYPOT_GEMINI_API_KEY":       "g-key",
		"HONEYPOT_CALLBACK_URL":         "https://evaluator.example/result",
		"HONEYPOT_CALLBACK_TIMEOUT":     "3s",
		"HONEYPOT_ARCHIVE":              "postgres",
		"HONEYPOT_DATABASE_URL":         "postgres://u:p@db/honeypot",
		"HONEYPOT_DB_MAX_CONNS":         "4",
		"HONEYPOT_SLACK_BOT_TOKEN":      "xoxb-123",
		"HONEYPOT_SLACK_CHANNEL":        "C0SCAMS",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod-key", cfg.APIKey)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.Tracing)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 2.5, cfg.Server.RateLimitRPS, 1e-9)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.InDelta(t, 0.75, cfg.Detection.ScamThreshold, 1e-9)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 12*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "r3dis", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 45*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "gemini", cfg.Agent.Backend)
	assert.Equal(t, "gemini-1.5-flash", cfg.Agent.Model)
	assert.Equal(t, 8*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "g-key", cfg.Agent.GeminiAPIKey)
	assert.Equal(t, "https://evaluator.example/result", cfg.Callback.URL)
	assert.Equal(t, 3*time.Second, cfg.Callback.Timeout)
	assert.Equal(t, "postgres", cfg.Archive.Kind)
	assert.Equal(t, "postgres://u:p@db/honeypot", cfg.Archive.DatabaseURL)
	assert.Equal(t, 4, cfg.Archive.MaxConns)
	assert.Equal(t, "xoxb-123", cfg.Slack.BotToken)
	assert.Equal(t, "C0SCAMS", cfg.Slack.Channel)
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			APIKey:    "k",
			Server:    ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, RateLimitRPS: 1, RateLimitBurst: 1},
			Detection: DetectionConfig{ScamThreshold: 0.6},
			Session:   SessionConfig{Store: "memory", MaxAge: time.Hour},
			Redis:     RedisConfig{LockTTL: time.Minute},
			Agent:     AgentConfig{Backend: "ollama", Timeout: time.Second},
			Callback:  CallbackConfig{Timeout: time.Second},
			Archive:   ArchiveConfig{MaxConns: 1},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("threshold of exactly one passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Detection.ScamThreshold = 1
		assert.NoError(t, c.validate())
	})

	t.Run("sqlite archive needs no url", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Archive.Kind = "sqlite"
		assert.NoError(t, c.validate())
	})

	t.Run("gemini with key passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Agent.Backend = "gemini"
		c.Agent.GeminiAPIKey = "g"
		assert.NoError(t, c.validate())
	})

	t.Run("empty API key fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.APIKey = ""
		assert.ErrorContains(t, c.validate(), "HONEYPOT_API_KEY")
	})

	t.Run("negative burst fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.RateLimitBurst = -1
		assert.ErrorContains(t, c.validate(), "HONEYPOT_RATE_LIMIT_BURST")
	})
}

func strPtr(s string) *string {
	return &s
}
