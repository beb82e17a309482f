package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/config"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/server"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store/mongostore"
)

var rootCmd = &cobra.Command{
	Use:           "interviewprep",
	Short:         "Adaptive interview practice service",
	Long:          "interviewprep runs multi-round mock interviews: it asks questions, scores answers, adapts difficulty and predicts readiness.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INTERVIEW_STORE_PATH)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable development logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges flags, environment and the optional config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	binds := map[string]string{
		"config":            "config",
		"store.path":        "db",
		"debug":             "debug",
		"server.addr":       "addr",
		"llm.provider":      "provider",
		"readiness.command": "classifier",
	}
	for key, flag := range binds {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}
	return config.Load(v)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// resolveDBPath returns the configured SQLite path or the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// sessionStores holds the stores a command needs. Local is always open
// since it also holds the LLM event log; Mongo is set only for the mongo
// driver.
type sessionStores struct {
	Repo  store.SessionRepo
	Local *store.Store
	Mongo *mongostore.Client
}

// Close releases every open store.
func (s *sessionStores) Close() {
	if s.Mongo != nil {
		s.Mongo.Close(context.Background())
	}
	s.Local.Close()
}

// Checks returns a readiness pinger per backing store.
func (s *sessionStores) Checks() map[string]server.Pinger {
	checks := map[string]server.Pinger{"sqlite": s.Local}
	if s.Mongo != nil {
		checks["mongo"] = s.Mongo
	}
	return checks
}

// openSessionStores opens the session repository selected by the store
// driver.
func openSessionStores(ctx context.Context, cfg *config.Config) (*sessionStores, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver != config.DriverMongo {
		return &sessionStores{Repo: s.SessionRepo(), Local: s}, nil
	}

	mc, err := mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	if err != nil {
		s.Close()
		return nil, err
	}
	repo, err := mongostore.NewSessionRepo(ctx, mc, cfg.Store.MongoCollection)
	if err != nil {
		mc.Close(context.Background())
		s.Close()
		return nil, err
	}
	return &sessionStores{Repo: repo, Local: s, Mongo: mc}, nil
}
