package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/ui/components"
)

// sparklineMinWidth is the terminal width below which the recent-sessions
// column is left out.
const sparklineMinWidth = 100

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime statistics per game and language levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		aggs, err := st.AggregateRepo().List(ctx)
		if err != nil {
			return fmt.Errorf("list aggregates: %w", err)
		}

		if len(aggs) == 0 {
			fmt.Println("No sessions played yet.")
		} else {
			printAggregates(aggs, terminalWidth() >= sparklineMinWidth)
		}

		return printLanguageLevels(ctx, st.LevelRepo())
	},
}

func printAggregates(aggs []progress.AggregateStats, spark bool) {
	fmt.Printf("%-18s  %8s  %7s  %7s  %7s  %8s  %5s  %-9s  %s\n",
		"Game", "Sessions", "Trials", "Acc", "Best", "Avg Ms", "Level", "Trend", "Last played")
	fmt.Println(strings.Repeat("─", 100))

	for _, a := range aggs {
		last := "-"
		if !a.LastPlayedAt.IsZero() {
			last = a.LastPlayedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%-18s  %8d  %7d  %6.1f%%  %6.1f%%  %8.0f  %5d  %-9s  %s",
			a.Kind.DisplayName(), a.TotalSessions, a.TotalTrials,
			a.Accuracy*100, a.BestAccuracy*100, a.AvgResponseMs,
			a.CurrentLevel, a.Trend, last)
		if spark && len(a.RecentSessions) > 0 {
			accs := make([]float64, len(a.RecentSessions))
			for i, r := range a.RecentSessions {
				accs[i] = r.Accuracy
			}
			fmt.Print("  ", components.Sparkline(accs))
		}
		fmt.Println()
	}
}

func printLanguageLevels(ctx context.Context, levels store.LevelRepo) error {
	var lines []string
	for _, lang := range language.Languages() {
		rec, err := levels.Get(ctx, string(lang))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get level: %w", err)
		}
		lines = append(lines, fmt.Sprintf("%-12s  %s %s  (since %s)",
			lang.Name(), rec.Tier, rec.SubTier, rec.UpdatedAt.Local().Format("2006-01-02")))
	}
	if len(lines) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println("Language Levels")
	fmt.Println(strings.Repeat("─", 40))
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
