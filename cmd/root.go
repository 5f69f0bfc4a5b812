package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opengov/earlymath/internal/config"
	"github.com/opengov/earlymath/internal/engine"
	"github.com/opengov/earlymath/internal/llm"
	"github.com/opengov/earlymath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "earlymath",
	Short: "Adaptive K-12 math tutoring engine",
	Long: "EarlyMath — adaptive learning-path engine that picks the next topic,\n" +
		"generates and grades problems, and runs AI tutoring sessions.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EARLYMATH_DB_PATH)")
	rootCmd.PersistentFlags().String("student", "", "Student ID (overrides configured default)")
	rootCmd.PersistentFlags().Int("grade", -1, "Student grade, 0 (K) to 12 (overrides configured default)")
	rootCmd.PersistentFlags().String("config", "", "Path to earlymath.yaml")

	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(problemCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig assembles the engine configuration: file and environment
// first, then command-line flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	if file, _ := cmd.Flags().GetString("config"); file != "" {
		v.SetConfigFile(file)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}

	if s, _ := cmd.Flags().GetString("student"); s != "" {
		cfg.Student.ID = s
	}
	if cmd.Flags().Changed("grade") {
		cfg.Student.Grade, _ = cmd.Flags().GetInt("grade")
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if cfg.DBPath == "" {
		cfg.DBPath, err = store.DefaultDBPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
	} else if err := store.EnsureDir(cfg.DBPath); err != nil {
		return config.Config{}, fmt.Errorf("create database directory: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	// Providers without configured keys fall back to env discovery, then
	// to the deterministic mock so offline commands still work.
	if err := cfg.LLM.Validate(); err != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Router = cfg.LLM.Router
			discovered.Retry = cfg.LLM.Retry
			discovered.Timeout = cfg.LLM.Timeout
			cfg.LLM = discovered
		} else {
			fmt.Fprintln(os.Stderr, "warning: no provider API key found; using the mock provider")
			cfg.LLM.Provider = "mock"
			cfg.LLM.Order = nil
		}
	}

	return cfg, nil
}

// openEngine builds a ready engine for one command invocation. Callers
// must Close it.
func openEngine(cmd *cobra.Command) (*engine.Engine, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	e, err := engine.New(cmd.Context(), cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	return e, cfg, nil
}
