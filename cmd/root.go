package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/focuslab/internal/config"
	"github.com/abhisek/focuslab/internal/store"
)

var (
	settings  config.Settings
	logger    = slog.Default()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "focuslab",
	Short: "Attention and language training in the terminal",
	Long: `FocusLab — adaptive attention games (divided attention, double decision,
icon swap) and LLM-graded tense rewrite drills, with progress tracking.

Configuration is read from $XDG_CONFIG_HOME/focuslab/config.toml, .env files
and FOCUSLAB_* environment variables. The tense rewrite drill needs one of
ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		s, err := config.Load(path)
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			s.DBPath = p
		}
		l, closer, err := config.OpenLogger(s)
		if err != nil {
			return err
		}
		settings, logger, logCloser = s, l, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FOCUSLAB_DB and config)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/focuslab/config.toml)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path: --db flag, then FOCUSLAB_DB,
// then the config file, then the default XDG path.
func resolveDBPath() (string, error) {
	if settings.DBPath != "" {
		return settings.DBPath, store.EnsureDir(settings.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the database for a subcommand.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
