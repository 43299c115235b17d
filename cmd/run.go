package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/focuslab/internal/app"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/llm"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, start *difficulty.GameKind) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := app.Options{
		Store:    st,
		Settings: settings,
		Logger:   logger,
		Start:    start,
	}

	// The timed games work without an LLM; the language games need one.
	if settings.LLMConfigured {
		provider, err := llm.NewProvider(ctx, settings.LLM, st.EventRepo(), logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "The language games will be unavailable.")
		} else {
			opts.Provider = provider
		}
	}

	logger.Info("starting", "llm", opts.Provider != nil, "language", settings.Language)
	return app.Run(opts)
}
