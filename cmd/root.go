package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/config"
	"github.com/abhisek/quizgenius/internal/logger"
	"github.com/abhisek/quizgenius/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizgenius",
	Short: "Generate validated quiz questions from study material",
	Long: "quizgenius turns a document's text into multiple choice and true/false\n" +
		"questions, scores every candidate and keeps the best ones.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides QUIZGENIUS_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZGENIUS_DB env var)")
	rootCmd.PersistentFlags().Bool("json", false, "Print machine-readable JSON instead of a styled report")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file from --config, then QUIZGENIUS_CONFIG.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("QUIZGENIUS_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

// resolveDBPath returns the configured database path (--db flag, then
// config or QUIZGENIUS_DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
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

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
