// Package config loads service configuration from defaults, an optional
// config file and INTERVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/llm"
)

// EnvPrefix prefixes every environment variable, e.g. INTERVIEW_SERVER_ADDR.
const EnvPrefix = "INTERVIEW"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	LLM       llm.Config      `mapstructure:"llm"`
	Debug     bool            `mapstructure:"debug"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	// JWTSecret signs and verifies HS256 bearer tokens.
	JWTSecret string `mapstructure:"jwt_secret"`
	// TokenTTL is the lifetime of tokens minted by the token command.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "mongo"
	// Path is the SQLite database file. Empty selects store.DefaultDBPath.
	Path            string `mapstructure:"path"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// RedisConfig enables the distributed session lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type SessionConfig struct {
	MaxQuestions    int           `mapstructure:"max_questions"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	StepUp          float64       `mapstructure:"step_up"`
	StepDown        float64       `mapstructure:"step_down"`
}

// ReadinessConfig selects the classifier. An empty Command uses the
// built-in logistic model.
type ReadinessConfig struct {
	Command string `mapstructure:"command"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			Driver:          DriverSQLite,
			MongoDatabase:   "interviewprep",
			MongoCollection: "sessions",
		},
		Redis: RedisConfig{
			LockTTL: 2 * time.Minute,
		},
		Session: SessionConfig{
			MaxQuestions:    5,
			UpstreamTimeout: 30 * time.Second,
			StepUp:          8,
			StepDown:        4,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads configuration from v. Defaults are registered on v so that
// every key can be overridden from the environment. If the "config" key is
// set, that file is read first.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Without an explicit provider, fall back to whichever standard API
	// key is present in the environment.
	if !providerChosen(v) {
		if found, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = found
		}
	}
	return &cfg, nil
}

// providerChosen reports whether the LLM provider came from a file, flag or
// environment variable rather than the default.
func providerChosen(v *viper.Viper) bool {
	if _, ok := os.LookupEnv(EnvPrefix + "_LLM_PROVIDER"); ok {
		return true
	}
	return v.InConfig("llm.provider") || v.GetString("llm.provider") != llm.DefaultConfig().Provider
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("INTERVIEW_AUTH_JWT_SECRET is required"))
	}
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("INTERVIEW_STORE_MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver: %q", c.Store.Driver))
	}
	if c.Session.MaxQuestions <= 0 {
		errs = append(errs, fmt.Errorf("session.max_questions must be positive, got %d", c.Session.MaxQuestions))
	}
	if c.Session.StepDown >= c.Session.StepUp {
		errs = append(errs, fmt.Errorf("session.step_down (%g) must be below session.step_up (%g)", c.Session.StepDown, c.Session.StepUp))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// setDefaults registers every leaf of cfg as a viper default.
func setDefaults(v *viper.Viper, cfg Config) {
	defaults := map[string]any{
		"server.addr":             cfg.Server.Addr,
		"server.read_timeout":     cfg.Server.ReadTimeout,
		"server.write_timeout":    cfg.Server.WriteTimeout,
		"server.shutdown_timeout": cfg.Server.ShutdownTimeout,
		"server.cors_origins":     cfg.Server.CORSOrigins,

		"auth.jwt_secret": cfg.Auth.JWTSecret,
		"auth.token_ttl":  cfg.Auth.TokenTTL,

		"store.driver":           cfg.Store.Driver,
		"store.path":             cfg.Store.Path,
		"store.mongo_uri":        cfg.Store.MongoURI,
		"store.mongo_database":   cfg.Store.MongoDatabase,
		"store.mongo_collection": cfg.Store.MongoCollection,

		"redis.addr":     cfg.Redis.Addr,
		"redis.password": cfg.Redis.Password,
		"redis.db":       cfg.Redis.DB,
		"redis.lock_ttl": cfg.Redis.LockTTL,

		"session.max_questions":    cfg.Session.MaxQuestions,
		"session.upstream_timeout": cfg.Session.UpstreamTimeout,
		"session.step_up":          cfg.Session.StepUp,
		"session.step_down":        cfg.Session.StepDown,

		"readiness.command": cfg.Readiness.Command,

		"llm.provider":             cfg.LLM.Provider,
		"llm.timeout":              cfg.LLM.Timeout,
		"llm.anthropic.api_key":    cfg.LLM.Anthropic.APIKey,
		"llm.anthropic.model":      cfg.LLM.Anthropic.Model,
		"llm.anthropic.base_url":   cfg.LLM.Anthropic.BaseURL,
		"llm.openai.api_key":       cfg.LLM.OpenAI.APIKey,
		"llm.openai.model":         cfg.LLM.OpenAI.Model,
		"llm.openai.base_url":      cfg.LLM.OpenAI.BaseURL,
		"llm.gemini.api_key":       cfg.LLM.Gemini.APIKey,
		"llm.gemini.model":         cfg.LLM.Gemini.Model,
		"llm.gemini.base_url":      cfg.LLM.Gemini.BaseURL,
		"llm.openrouter.api_key":   cfg.LLM.OpenRouter.APIKey,
		"llm.openrouter.model":     cfg.LLM.OpenRouter.Model,
		"llm.openrouter.base_url":  cfg.LLM.OpenRouter.BaseURL,
		"llm.openrouter.app_title": cfg.LLM.OpenRouter.AppTitle,
		"llm.openrouter.app_url":   cfg.LLM.OpenRouter.AppURL,
		"llm.ollama.model":         cfg.LLM.Ollama.Model,
		"llm.ollama.base_url":      cfg.LLM.Ollama.BaseURL,
		"llm.retry.max_attempts":   cfg.LLM.Retry.MaxAttempts,
		"llm.retry.initial_wait":   cfg.LLM.Retry.InitialWait,
		"llm.retry.max_wait":       cfg.LLM.Retry.MaxWait,
		"llm.retry.multiplier":     cfg.LLM.Retry.Multiplier,

		"debug": cfg.Debug,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
