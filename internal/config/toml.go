package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Unset keys are nil.
type FileConfig struct {
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Games    GamesConfig    `toml:"games"`
	Language LanguageConfig `toml:"language"`
	LLM      LLMConfig      `toml:"llm"`
}

// DatabaseConfig maps [database].
type DatabaseConfig struct {
	Path *string `toml:"path"`
}

// LogConfig maps [log].
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// GamesConfig maps [games].
type GamesConfig struct {
	FeedbackMs        *int `toml:"feedback-ms"`
	CountdownSeconds  *int `toml:"countdown-seconds"`
	CheckpointEvery   *int `toml:"checkpoint-every"`
	ResponseTimeoutMs *int `toml:"response-timeout-ms"`
}

// LanguageConfig maps [language].
type LanguageConfig struct {
	Code      *string `toml:"code"`
	Level     *string `toml:"level"`
	SubLevel  *string `toml:"sub-level"`
	Exercises *int    `toml:"exercises"`
	Questions *int    `toml:"questions"`

	NewsAPIKey *string `toml:"news-api-key"`
}

// LLMConfig maps [llm].
type LLMConfig struct {
	Provider *string `toml:"provider"`
	Model    *string `toml:"model"`
	Timeout  *string `toml:"timeout"`
}

// LoadFile reads a TOML config from path. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", keys[0].String(), path)
	}
	return cfg, nil
}
