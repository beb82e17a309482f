package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearKeys unsets the standard provider keys so discovery is deterministic.
func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearKeys(t)
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Session.MaxQuestions)
	assert.Equal(t, 8.0, cfg.Session.StepUp)
	assert.Equal(t, 4.0, cfg.Session.StepDown)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "gemma3:4b", cfg.LLM.Ollama.Model)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_Env(t *testing.T) {
	clearKeys(t)
	t.Setenv("INTERVIEW_SERVER_ADDR", ":9090")
	t.Setenv("INTERVIEW_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("INTERVIEW_STORE_DRIVER", "mongo")
	t.Setenv("INTERVIEW_STORE_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("INTERVIEW_SESSION_MAX_QUESTIONS", "8")
	t.Setenv("INTERVIEW_SESSION_UPSTREAM_TIMEOUT", "45s")
	t.Setenv("INTERVIEW_LLM_PROVIDER", "anthropic")
	t.Setenv("INTERVIEW_LLM_ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("INTERVIEW_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, 8, cfg.Session.MaxQuestions)
	assert.Equal(t, 45*time.Second, cfg.Session.UpstreamTimeout)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DiscoversProvider(t *testing.T) {
	clearKeys(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_ExplicitProviderWins(t *testing.T) {
	clearKeys(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INTERVIEW_LLM_PROVIDER", "ollama")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
}

func TestLoad_File(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "interview.yaml")
	content := `
server:
  addr: ":7070"
  cors_origins: ["https://app.example.com"]
auth:
  jwt_secret: from-file
llm:
  provider: mock
session:
  max_questions: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.Set("config", path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Session.MaxQuestions)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "secret"
		cfg.LLM.Provider = "mock"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET"},
		{"mongo without uri", func(c *Config) { c.Store.Driver = DriverMongo }, "MONGO_URI"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "unknown store driver"},
		{"zero questions", func(c *Config) { c.Session.MaxQuestions = 0 }, "max_questions"},
		{"inverted thresholds", func(c *Config) { c.Session.StepDown = 9 }, "step_down"},
		{"llm", func(c *Config) { c.LLM.Provider = "anthropic" }, "ANTHROPIC_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
