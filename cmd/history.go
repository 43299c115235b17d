package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List recent sessions, or the trials of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		if len(args) == 1 {
			return printSession(ctx, st, args[0])
		}

		limit, _ := cmd.Flags().GetInt("limit")
		game, _ := cmd.Flags().GetString("game")
		filter := store.SessionFilter{FinishedOnly: true, Limit: limit}
		if game != "" {
			kind, err := difficulty.ParseGameKind(game)
			if err != nil {
				return err
			}
			filter.Game = &kind
		}

		recs, err := st.SessionRepo().Recent(ctx, filter)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-16s  %6s  %7s  %6s  %s\n",
			"ID", "Ended", "Game", "Trials", "Acc", "Rating", "Level")
		fmt.Println(strings.Repeat("─", 110))
		for _, r := range recs {
			fmt.Printf("%-36s  %-16s  %-16s  %6d  %6.1f%%  %6d  %s\n",
				r.ID, r.EndedAt.Local().Format("2006-01-02 15:04"), r.Game,
				r.TotalTrials, r.Accuracy*100, r.Rating, levelColumn(r))
		}
		return nil
	},
}

func levelColumn(r store.SessionRecord) string {
	if r.Game.Language() {
		return fmt.Sprintf("%s %s %s (%.1f)", r.Language, r.CEFRLevel, r.SubLevel, r.OverallScore)
	}
	return fmt.Sprintf("%d → %d", r.StartLevel, r.FinalLevel)
}

func printSession(ctx context.Context, st *store.Store, id string) error {
	rec, err := st.SessionRepo().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	fmt.Printf("ID:        %s\n", rec.ID)
	fmt.Printf("Game:      %s\n", rec.Game.DisplayName())
	fmt.Printf("Started:   %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if rec.Finished() {
		fmt.Printf("Duration:  %s\n", rec.EndedAt.Sub(rec.StartedAt).Round(time.Second))
	}
	fmt.Printf("Trials:    %d (%d correct, %.1f%%)\n", rec.TotalTrials, rec.CorrectTrials, rec.Accuracy*100)
	fmt.Printf("Level:     %s\n", levelColumn(*rec))
	if rec.Feedback != "" {
		fmt.Printf("Feedback:  %s\n", rec.Feedback)
	}

	trials, err := st.TrialRepo().ListBySession(ctx, id)
	if err != nil {
		return fmt.Errorf("list trials: %w", err)
	}
	if len(trials) == 0 {
		return nil
	}

	fmt.Println()
	fmt.Printf("%4s  %5s  %-3s  %-12s  %-12s  %8s\n", "#", "Level", "OK", "Central", "Peripheral", "Ms")
	fmt.Println(strings.Repeat("─", 56))
	for _, t := range trials {
		ok := "✓"
		if !t.Correct {
			ok = "✗"
		}
		if t.TimedOut {
			ok = "⏱"
		}
		fmt.Printf("%4d  %5d  %-3s  %-12s  %-12s  %8.0f\n",
			t.Number, t.Level, ok,
			t.CentralAnswer+"/"+t.CentralExpected,
			fmt.Sprintf("%d/%d", t.PeripheralAnswer, t.PeripheralExpected),
			t.ResponseMillis())
	}
	return nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().StringP("game", "g", "", "Filter by game (divided-attention, double-decision, icon-swap, tense-rewrite, comprehension, speed-summary)")
}
