package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/store"
)

const (
	sheetSessions   = "Sessions"
	sheetAggregates = "Aggregates"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export sessions and lifetime statistics to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		recs, err := st.SessionRepo().Recent(ctx, store.SessionFilter{FinishedOnly: true})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		aggs, err := st.AggregateRepo().List(ctx)
		if err != nil {
			return fmt.Errorf("list aggregates: %w", err)
		}

		if err := writeWorkbook(args[0], recs, aggs); err != nil {
			return err
		}
		fmt.Printf("Exported %d sessions to %s\n", len(recs), args[0])
		return nil
	},
}

func writeWorkbook(path string, recs []store.SessionRecord, aggs []progress.AggregateStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSessions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetAggregates); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	rows := [][]any{{
		"ID", "Game", "Started", "Ended", "Start Level", "Final Level", "Trials", "Correct",
		"Accuracy", "Avg Response Ms", "Rating", "Language", "CEFR", "Sub-level", "Score", "Feedback",
	}}
	for _, r := range recs {
		rows = append(rows, []any{
			r.ID, r.Game.String(), r.StartedAt.Local(), r.EndedAt.Local(),
			int(r.StartLevel), int(r.FinalLevel), r.TotalTrials, r.CorrectTrials,
			r.Accuracy, r.AvgResponseMs, r.Rating,
			r.Language, r.CEFRLevel, r.SubLevel, r.OverallScore, r.Feedback,
		})
	}
	if err := setRows(f, sheetSessions, rows); err != nil {
		return err
	}

	rows = [][]any{{
		"Game", "Sessions", "Trials", "Accuracy", "Best Accuracy", "Best Session",
		"Avg Response Ms", "Level", "Trend", "Last Played",
	}}
	for _, a := range aggs {
		rows = append(rows, []any{
			a.Kind.String(), a.TotalSessions, a.TotalTrials, a.Accuracy, a.BestAccuracy,
			a.BestSessionID, a.AvgResponseMs, int(a.CurrentLevel), string(a.Trend), a.LastPlayedAt.Local(),
		})
	}
	if err := setRows(f, sheetAggregates, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
