// Package config assembles the engine configuration from file, environment,
// and defaults. The engine consumes one Config at construction; nothing
// reads configuration ad hoc after that.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/opengov/earlymath/internal/llm"
	"github.com/opengov/earlymath/internal/mastery"
	"github.com/opengov/earlymath/internal/path"
	"github.com/opengov/earlymath/internal/problems"
	"github.com/opengov/earlymath/internal/tutor"
)

// Config is the complete engine configuration.
type Config struct {
	Student StudentConfig
	Mastery mastery.Params
	Planner path.Config
	LLM     llm.Config
	Cache   llm.CacheConfig
	Tutor   tutor.Config

	// DBPath is the SQLite database file. Empty disables persistence,
	// which the engine supports for ephemeral runs and tests.
	DBPath string
}

// StudentConfig identifies the default student for single-learner
// deployments. The CLI overrides both per invocation.
type StudentConfig struct {
	ID    string
	Grade int
}

// Default returns the configuration used when no file or environment
// overrides it. Every sub-package contributes its own defaults.
func Default() Config {
	return Config{
		Student: StudentConfig{ID: "student", Grade: 3},
		Mastery: mastery.DefaultParams(),
		Planner: path.DefaultConfig(),
		LLM:     llm.DefaultConfig(),
		Cache:   llm.DefaultCacheConfig(),
		Tutor:   tutor.DefaultConfig(),
	}
}

// Load reads earlymath.yaml plus EARLYMATH_* environment overrides into a
// Config. A missing config file is not an error; everything then comes
// from defaults and the environment. Pass nil to use a fresh viper.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigName("earlymath")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "earlymath"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("EARLYMATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("student.id", def.Student.ID)
	v.SetDefault("student.grade", def.Student.Grade)

	v.SetDefault("mastery.initial_rate", def.Mastery.InitialRate)
	v.SetDefault("mastery.rate_decay", def.Mastery.RateDecay)
	v.SetDefault("mastery.min_rate", def.Mastery.MinRate)
	v.SetDefault("mastery.confidence_k", def.Mastery.ConfidenceK)
	v.SetDefault("mastery.advance_streak", def.Mastery.AdvanceStreak)
	v.SetDefault("mastery.demote_misses", def.Mastery.DemoteMisses)

	v.SetDefault("planner.mastery_threshold", def.Planner.MasteryThreshold)

	v.SetDefault("llm.provider", def.LLM.Provider)
	v.SetDefault("llm.order", def.LLM.Order)
	v.SetDefault("llm.timeout", def.LLM.Timeout)
	v.SetDefault("llm.anthropic.model", def.LLM.Anthropic.Model)
	v.SetDefault("llm.openai.model", def.LLM.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", def.LLM.OpenAI.BaseURL)
	v.SetDefault("llm.gemini.model", def.LLM.Gemini.Model)
	v.SetDefault("llm.openrouter.model", def.LLM.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", def.LLM.OpenRouter.BaseURL)
	v.SetDefault("llm.retry.max_attempts", def.LLM.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", def.LLM.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", def.LLM.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", def.LLM.Retry.Multiplier)
	v.SetDefault("llm.router.unavailable_after", def.LLM.Router.UnavailableAfter)
	v.SetDefault("llm.router.cooldown", def.LLM.Router.Cooldown)
	v.SetDefault("llm.router.attempt_timeout", def.LLM.Router.AttemptTimeout)

	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("cache.capacity", def.Cache.Capacity)

	v.SetDefault("tutor.max_turns", def.Tutor.MaxTurns)
	v.SetDefault("tutor.max_cost_usd", def.Tutor.MaxCostUSD)
	v.SetDefault("tutor.max_concurrent", def.Tutor.MaxConcurrent)
	v.SetDefault("tutor.history_window", def.Tutor.HistoryWindow)
	v.SetDefault("tutor.idle_after", def.Tutor.IdleAfter)
	v.SetDefault("tutor.close_after", def.Tutor.CloseAfter)
	v.SetDefault("tutor.ask_timeout", def.Tutor.AskTimeout)
	v.SetDefault("tutor.max_tokens", def.Tutor.MaxTokens)
	v.SetDefault("tutor.temperature", def.Tutor.Temperature)

	v.SetDefault("db.path", "")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Student: StudentConfig{
			ID:    v.GetString("student.id"),
			Grade: v.GetInt("student.grade"),
		},
		Mastery: mastery.Params{
			InitialRate:   v.GetFloat64("mastery.initial_rate"),
			RateDecay:     v.GetFloat64("mastery.rate_decay"),
			MinRate:       v.GetFloat64("mastery.min_rate"),
			ConfidenceK:   v.GetFloat64("mastery.confidence_k"),
			AdvanceStreak: v.GetInt("mastery.advance_streak"),
			DemoteMisses:  v.GetInt("mastery.demote_misses"),
		},
		Planner: path.Config{
			MasteryThreshold: v.GetFloat64("planner.mastery_threshold"),
		},
		LLM: llm.Config{
			Provider: v.GetString("llm.provider"),
			Order:    v.GetStringSlice("llm.order"),
			Timeout:  v.GetDuration("llm.timeout"),
			Anthropic: llm.AnthropicConfig{
				APIKey: v.GetString("llm.anthropic.api_key"),
				Model:  v.GetString("llm.anthropic.model"),
			},
			OpenAI: llm.OpenAIConfig{
				APIKey:  v.GetString("llm.openai.api_key"),
				Model:   v.GetString("llm.openai.model"),
				BaseURL: v.GetString("llm.openai.base_url"),
			},
			Gemini: llm.GeminiConfig{
				APIKey: v.GetString("llm.gemini.api_key"),
				Model:  v.GetString("llm.gemini.model"),
			},
			OpenRouter: llm.OpenRouterConfig{
				APIKey:  v.GetString("llm.openrouter.api_key"),
				Model:   v.GetString("llm.openrouter.model"),
				BaseURL: v.GetString("llm.openrouter.base_url"),
			},
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry.max_attempts"),
				InitialWait: v.GetDuration("llm.retry.initial_wait"),
				MaxWait:     v.GetDuration("llm.retry.max_wait"),
				Multiplier:  v.GetFloat64("llm.retry.multiplier"),
			},
			Router: llm.RouterConfig{
				UnavailableAfter: v.GetInt("llm.router.unavailable_after"),
				Cooldown:         v.GetDuration("llm.router.cooldown"),
				AttemptTimeout:   v.GetDuration("llm.router.attempt_timeout"),
			},
		},
		Cache: llm.CacheConfig{
			TTL:      v.GetDuration("cache.ttl"),
			Capacity: v.GetInt("cache.capacity"),
		},
		Tutor: tutor.Config{
			MaxTurns:      v.GetInt("tutor.max_turns"),
			MaxCostUSD:    v.GetFloat64("tutor.max_cost_usd"),
			MaxConcurrent: v.GetInt("tutor.max_concurrent"),
			HistoryWindow: v.GetInt("tutor.history_window"),
			IdleAfter:     v.GetDuration("tutor.idle_after"),
			CloseAfter:    v.GetDuration("tutor.close_after"),
			AskTimeout:    v.GetDuration("tutor.ask_timeout"),
			MaxTokens:     v.GetInt("tutor.max_tokens"),
			Temperature:   v.GetFloat64("tutor.temperature"),
		},
		DBPath: v.GetString("db.path"),
	}
}

// Validate checks every tunable for structural sanity. Provider API keys
// are deliberately not checked here; the engine validates them only for
// the providers it actually constructs.
func (c Config) Validate() error {
	if c.Student.Grade < problems.MinGrade || c.Student.Grade > problems.MaxGrade {
		return fmt.Errorf("student.grade %d out of range [%d, %d]", c.Student.Grade, problems.MinGrade, problems.MaxGrade)
	}
	if c.Mastery.InitialRate <= 0 || c.Mastery.InitialRate > 1 {
		return fmt.Errorf("mastery.initial_rate %g must be in (0, 1]", c.Mastery.InitialRate)
	}
	if c.Mastery.MinRate <= 0 || c.Mastery.MinRate > c.Mastery.InitialRate {
		return fmt.Errorf("mastery.min_rate %g must be in (0, initial_rate]", c.Mastery.MinRate)
	}
	if c.Mastery.RateDecay <= 0 {
		return fmt.Errorf("mastery.rate_decay %g must be positive", c.Mastery.RateDecay)
	}
	if c.Mastery.ConfidenceK <= 0 {
		return fmt.Errorf("mastery.confidence_k %g must be positive", c.Mastery.ConfidenceK)
	}
	if c.Mastery.AdvanceStreak < 1 {
		return fmt.Errorf("mastery.advance_streak %d must be at least 1", c.Mastery.AdvanceStreak)
	}
	if c.Mastery.DemoteMisses < 1 {
		return fmt.Errorf("mastery.demote_misses %d must be at least 1", c.Mastery.DemoteMisses)
	}
	if c.Planner.MasteryThreshold <= 0 || c.Planner.MasteryThreshold >= 1 {
		return fmt.Errorf("planner.mastery_threshold %g must be in (0, 1)", c.Planner.MasteryThreshold)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Tutor.HistoryWindow < 1 {
		return fmt.Errorf("tutor.history_window %d must be at least 1", c.Tutor.HistoryWindow)
	}
	if c.Tutor.Temperature < 0 || c.Tutor.Temperature > 1 {
		return fmt.Errorf("tutor.temperature %g must be in [0, 1]", c.Tutor.Temperature)
	}
	return nil
}
