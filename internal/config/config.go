package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/llm"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/trial"
)

// Settings is the resolved configuration.
type Settings struct {
	DBPath   string
	LogLevel slog.Level
	LogFile  string

	Feedback        time.Duration
	Countdown       time.Duration
	CheckpointEvery int
	ResponseTimeout time.Duration

	Language  language.Language
	Level     cefr.Level
	Exercises int
	Questions int

	// NewsAPIKey enables live headlines for the reading games.
	NewsAPIKey string

	LLM           llm.Config
	LLMConfigured bool
}

// Defaults returns settings with no file or environment applied.
func Defaults() Settings {
	return Settings{
		LogLevel:        slog.LevelInfo,
		Feedback:        trial.DefaultFeedbackDuration,
		Countdown:       trial.DefaultCountdownDuration,
		CheckpointEvery: trial.DefaultCheckpointEvery,
		Language:        "en",
		Level:           cefr.Bottom,
		Exercises:       language.BatterySize,
		Questions:       language.BatterySize,
		LLM:             llm.DefaultConfig(),
	}
}

// Load resolves settings from the config file at path (DefaultConfigPath
// when empty), .env files and the environment. Environment wins over
// .env values only because godotenv never overrides variables already
// set.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := loadEnvFiles(".env", DefaultEnvPath()); err != nil {
		return Settings{}, err
	}

	fc, err := LoadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return resolve(fc)
}

func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func resolve(fc FileConfig) (Settings, error) {
	s := Defaults()

	// Database: FOCUSLAB_DB, then the file, then the data dir.
	switch {
	case os.Getenv("FOCUSLAB_DB") != "":
		s.DBPath = os.Getenv("FOCUSLAB_DB")
	case fc.Database.Path != nil:
		s.DBPath = expandHome(*fc.Database.Path)
	default:
		dir, err := store.DataDir()
		if err != nil {
			return Settings{}, err
		}
		s.DBPath = filepath.Join(dir, AppName+".db")
	}

	level := fc.Log.Level
	if v := os.Getenv("FOCUSLAB_LOG_LEVEL"); v != "" {
		level = &v
	}
	if level != nil {
		if err := s.LogLevel.UnmarshalText([]byte(*level)); err != nil {
			return Settings{}, fmt.Errorf("log level: %w", err)
		}
	}
	if fc.Log.File != nil {
		s.LogFile = expandHome(*fc.Log.File)
	}
	if v := os.Getenv("FOCUSLAB_LOG_FILE"); v != "" {
		s.LogFile = v
	}
	if s.LogFile == "" {
		s.LogFile = filepath.Join(filepath.Dir(s.DBPath), AppName+".log")
	}

	if err := applyGames(&s, fc.Games); err != nil {
		return Settings{}, err
	}
	if err := applyLanguage(&s, fc.Language); err != nil {
		return Settings{}, err
	}
	if err := applyLLM(&s, fc.LLM); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyGames(s *Settings, g GamesConfig) error {
	if g.FeedbackMs != nil {
		s.Feedback = time.Duration(*g.FeedbackMs) * time.Millisecond
	}
	if g.CountdownSeconds != nil {
		s.Countdown = time.Duration(*g.CountdownSeconds) * time.Second
	}
	if g.CheckpointEvery != nil {
		if *g.CheckpointEvery < 1 {
			return fmt.Errorf("games.checkpoint-every must be at least 1")
		}
		s.CheckpointEvery = *g.CheckpointEvery
	}
	if g.ResponseTimeoutMs != nil {
		s.ResponseTimeout = time.Duration(*g.ResponseTimeoutMs) * time.Millisecond
	}
	if v := os.Getenv("FOCUSLAB_RESPONSE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FOCUSLAB_RESPONSE_TIMEOUT=%q is not a valid duration: %w", v, err)
		}
		s.ResponseTimeout = d
	}
	return nil
}

func applyLanguage(s *Settings, l LanguageConfig) error {
	code := l.Code
	if v := os.Getenv("FOCUSLAB_LANGUAGE"); v != "" {
		code = &v
	}
	if code != nil {
		lang, err := language.ParseLanguage(*code)
		if err != nil {
			return err
		}
		s.Language = lang
	}

	if l.Level != nil {
		sub := ""
		if l.SubLevel != nil {
			sub = *l.SubLevel
		}
		lvl, err := cefr.Parse(*l.Level, sub)
		if err != nil {
			return fmt.Errorf("language level: %w", err)
		}
		s.Level = lvl
	}

	if l.Exercises != nil {
		s.Exercises = *l.Exercises
	}
	if v := os.Getenv("FOCUSLAB_EXERCISES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOCUSLAB_EXERCISES=%q: %w", v, err)
		}
		s.Exercises = n
	}
	if s.Exercises < 1 {
		return fmt.Errorf("exercises must be at least 1")
	}

	if l.Questions != nil {
		s.Questions = *l.Questions
	}
	if s.Questions < 1 {
		return fmt.Errorf("questions must be at least 1")
	}

	if l.NewsAPIKey != nil {
		s.NewsAPIKey = *l.NewsAPIKey
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		s.NewsAPIKey = v
	}
	return nil
}

func applyLLM(s *Settings, l LLMConfig) error {
	var (
		cfg llm.Config
		ok  bool
	)
	if os.Getenv("FOCUSLAB_LLM_PROVIDER") == "" && l.Provider != nil {
		cfg = llm.ConfigFromEnv()
		cfg.Provider = *l.Provider
		fillVendorKeys(&cfg)
		ok = cfg.Validate() == nil
	} else {
		cfg, ok = llm.Resolve()
		if !ok {
			cfg = llm.DefaultConfig()
		}
	}

	if l.Model != nil {
		setModel(&cfg, *l.Model)
	}
	if l.Timeout != nil {
		d, err := time.ParseDuration(*l.Timeout)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		cfg.Timeout = d
	}

	s.LLM = cfg
	s.LLMConfigured = ok
	return nil
}

// fillVendorKeys falls back to the vendor-standard key variables for a
// provider chosen in the config file.
func fillVendorKeys(cfg *llm.Config) {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	fill(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	fill(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	fill(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
}

func setModel(cfg *llm.Config, model string) {
	switch cfg.Provider {
	case "anthropic":
		cfg.Anthropic.Model = model
	case "openai":
		cfg.OpenAI.Model = model
	case "gemini":
		cfg.Gemini.Model = model
	case "openrouter":
		cfg.OpenRouter.Model = model
	}
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// LanguageConfig returns the exercise generation settings.
func (s Settings) LanguageConfig() language.Config {
	cfg := language.DefaultConfig()
	cfg.Exercises = s.Exercises
	cfg.Questions = s.Questions
	return cfg
}

// TrialConfig returns the engine settings for a game.
func (s Settings) TrialConfig() trial.Config {
	return trial.Config{
		FeedbackDuration:  s.Feedback,
		CountdownDuration: s.Countdown,
		CheckpointEvery:   s.CheckpointEvery,
		ResponseTimeout:   s.ResponseTimeout,
	}
}
