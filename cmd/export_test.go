package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/store"
)

func TestWriteWorkbook(t *testing.T) {
	end := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)
	recs := []store.SessionRecord{
		{ID: "s1", Game: difficulty.IconSwap, StartedAt: end.Add(-5 * time.Minute), EndedAt: end,
			StartLevel: 2, FinalLevel: 3, TotalTrials: 20, CorrectTrials: 16, Accuracy: 0.8, Rating: 70},
		{ID: "s2", Game: difficulty.TenseRewrite, StartedAt: end, EndedAt: end.Add(time.Minute),
			Language: "de", CEFRLevel: "A2", SubLevel: "novice", OverallScore: 6.5},
	}
	aggs := []progress.AggregateStats{{Kind: difficulty.IconSwap, TotalSessions: 1, TotalTrials: 20,
		Accuracy: 0.8, BestAccuracy: 0.8, BestSessionID: "s1", CurrentLevel: 3, Trend: progress.TrendStable, LastPlayedAt: end}}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeWorkbook(path, recs, aggs))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSessions, sheetAggregates}, f.GetSheetList())

	rows, err := f.GetRows(sheetSessions)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "s1", rows[1][0])
	assert.Equal(t, "icon-swap", rows[1][1])
	assert.Equal(t, "tense-rewrite", rows[2][1])
	assert.Equal(t, "de", rows[2][11])

	rows, err = f.GetRows(sheetAggregates)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[1][5])
	assert.Equal(t, "stable", rows[1][8])
}

func TestFilterPurpose(t *testing.T) {
	events := []store.LLMEvent{
		{ID: 1, LLMRequestEventData: store.LLMRequestEventData{Purpose: "grade"}},
		{ID: 2, LLMRequestEventData: store.LLMRequestEventData{Purpose: "exercise-gen"}},
		{ID: 3, LLMRequestEventData: store.LLMRequestEventData{Purpose: "grade"}},
		{ID: 4, LLMRequestEventData: store.LLMRequestEventData{Purpose: "grade"}},
	}
	assert.Len(t, filterPurpose(events, "", 2), 4)

	got := filterPurpose(events, "grade", 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}
