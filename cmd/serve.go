package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/config"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/interview"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/llm"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/lock"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/readiness"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/server"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/session"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := newLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter, ollama, mock (scripted rehearsal)")
	serveCmd.Flags().String("classifier", "", "External readiness classifier command (default: built-in model)")
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	stores, err := openSessionStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	checks := stores.Checks()

	provider, err := newLLMProvider(ctx, cfg, stores.Local.EventRepo(), logger.Named("llm"))
	if err != nil {
		return err
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, lock.RedisOptions{TTL: cfg.Redis.LockTTL}, logger.Named("lock"))
		checks["redis"] = server.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	svc := session.NewService(session.Deps{
		Repo:       stores.Repo,
		Gateway:    interview.NewLLMGateway(provider, interview.DefaultConfig()),
		Classifier: classifier,
		Locker:     locker,
		Logger:     logger.Named("session"),
	}, session.Config{
		MaxQuestions:    cfg.Session.MaxQuestions,
		UpstreamTimeout: cfg.Session.UpstreamTimeout,
		Thresholds: difficulty.Thresholds{
			StepUp:   cfg.Session.StepUp,
			StepDown: cfg.Session.StepDown,
		},
	})

	srv := server.New(svc, server.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     resolvedVersion(),
		Checks:      checks,
		Logger:      logger.Named("http"),
	})

	logger.Info("starting interviewprep",
		zap.String("version", resolvedVersion()),
		zap.String("llmProvider", cfg.LLM.Provider),
		zap.String("model", provider.ModelID()),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("distributedLock", cfg.Redis.Addr != ""),
	)
	return srv.Run(ctx, server.HTTPConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
}

// newLLMProvider builds the configured provider chain. The mock provider
// answers from the built-in rehearsal script.
func newLLMProvider(ctx context.Context, cfg *config.Config, events store.EventRepo, logger *zap.Logger) (llm.Provider, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM, events, logger)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if mock, ok := provider.(*llm.MockProvider); ok {
		mock.Fallback = interview.Rehearsal()
	}
	return provider, nil
}

func newClassifier(cfg *config.Config) (readiness.Classifier, error) {
	if cfg.Readiness.Command == "" {
		return readiness.NewLogisticClassifier(), nil
	}
	c, err := readiness.NewCommandClassifier(cfg.Readiness.Command)
	if err != nil {
		return nil, fmt.Errorf("create readiness classifier: %w", err)
	}
	return c, nil
}
