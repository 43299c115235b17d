package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableSessions, tableTrials, tableAggregates, tableLevels, tableLLMEvents} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	// Migration is idempotent.
	if err := migrate(context.Background(), s.DB()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSessionCreateFinalizeGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, SessionRecord{
		ID:         "s1",
		Game:       difficulty.DoubleDecision,
		StartedAt:  base,
		StartLevel: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get open session: %v", err)
	}
	if got.Finished() {
		t.Error("new session reports finished")
	}
	if got.FinalLevel != 4 || got.Game != difficulty.DoubleDecision {
		t.Errorf("open session = %+v", got)
	}

	err = repo.Finalize(ctx, SessionRecord{
		ID:            "s1",
		EndedAt:       base.Add(5 * time.Minute),
		FinalLevel:    6,
		TotalTrials:   20,
		CorrectTrials: 15,
		Accuracy:      0.75,
		AvgResponseMs: 512.5,
		Rating:        61,
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	got, err = repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.EndedAt.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("EndedAt = %v", got.EndedAt)
	}
	if got.TotalTrials != 20 || got.CorrectTrials != 15 || got.Accuracy != 0.75 ||
		got.AvgResponseMs != 512.5 || got.Rating != 61 || got.FinalLevel != 6 {
		t.Errorf("finalized session = %+v", got)
	}
	if got.StartLevel != 4 {
		t.Errorf("StartLevel = %d, want 4", got.StartLevel)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}
	if err := repo.Finalize(ctx, SessionRecord{ID: "missing", EndedAt: base}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finalize missing: err = %v, want ErrNotFound", err)
	}
}

func TestSessionRecentFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	games := []difficulty.GameKind{difficulty.DividedAttention, difficulty.IconSwap, difficulty.DividedAttention}
	for i, g := range games {
		id := fmt.Sprintf("s%d", i)
		if err := repo.Create(ctx, SessionRecord{ID: id, Game: g, StartedAt: base.Add(time.Duration(i) * time.Hour), StartLevel: 1}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.Finalize(ctx, SessionRecord{ID: "s0", EndedAt: base.Add(time.Minute), FinalLevel: 1}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	all, err := repo.Recent(ctx, SessionFilter{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 3 || all[0].ID != "s2" || all[2].ID != "s0" {
		t.Errorf("Recent(all) ids = %v, want newest first", ids(all))
	}

	game := difficulty.DividedAttention
	da, err := repo.Recent(ctx, SessionFilter{Game: &game})
	if err != nil {
		t.Fatalf("recent by game: %v", err)
	}
	if len(da) != 2 {
		t.Errorf("Recent(divided-attention) = %v, want 2 sessions", ids(da))
	}

	done, err := repo.Recent(ctx, SessionFilter{Game: &game, FinishedOnly: true})
	if err != nil {
		t.Fatalf("recent finished: %v", err)
	}
	if len(done) != 1 || done[0].ID != "s0" {
		t.Errorf("Recent(finished) = %v, want [s0]", ids(done))
	}

	limited, err := repo.Recent(ctx, SessionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Recent(limit 1) returned %d sessions", len(limited))
	}
}

func ids(recs []SessionRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestRecentLanguageScores(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	add := func(id, lang, level, sub string, at time.Time, score float64) {
		t.Helper()
		err := repo.Create(ctx, SessionRecord{
			ID: id, Game: difficulty.TenseRewrite, StartedAt: at, StartLevel: 1,
			Language: lang, CEFRLevel: level, SubLevel: sub,
		})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		err = repo.Finalize(ctx, SessionRecord{ID: id, EndedAt: at.Add(time.Minute), FinalLevel: 1, OverallScore: score})
		if err != nil {
			t.Fatalf("finalize %s: %v", id, err)
		}
	}

	// Seven matching sessions with scores 1..7, inserted out of order.
	for _, i := range []int{3, 1, 7, 5, 2, 6, 4} {
		add(fmt.Sprintf("m%d", i), "es", "B1", "well-placed", base.Add(time.Duration(i)*time.Hour), float64(i))
	}
	add("other-lang", "fr", "B1", "well-placed", base.Add(10*time.Hour), 9)
	add("other-level", "es", "B2", "well-placed", base.Add(11*time.Hour), 9)
	add("other-sub", "es", "B1", "advanced", base.Add(12*time.Hour), 9)

	// An open session is ignored.
	if err := repo.Create(ctx, SessionRecord{ID: "open", Game: difficulty.TenseRewrite, StartedAt: base.Add(13 * time.Hour),
		Language: "es", CEFRLevel: "B1", SubLevel: "well-placed"}); err != nil {
		t.Fatalf("create open: %v", err)
	}

	got, err := repo.RecentLanguageScores(ctx, difficulty.TenseRewrite, "es", "B1", "well-placed", 5)
	if err != nil {
		t.Fatalf("recent scores: %v", err)
	}
	want := []float64{3, 4, 5, 6, 7}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("scores = %v, want %v (oldest first)", got, want)
	}

	none, err := repo.RecentLanguageScores(ctx, difficulty.TenseRewrite, "de", "A1", "novice", 5)
	if err != nil {
		t.Fatalf("recent scores (none): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("scores for unknown language = %v, want empty", none)
	}
}

func TestTrialInsertBatchIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.SessionRepo().Create(ctx, SessionRecord{ID: "s1", Game: difficulty.DividedAttention, StartedAt: base, StartLevel: 3}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	mk := func(n int) progress.Trial {
		return progress.Trial{
			Number: n, Level: 3, Correct: n%2 == 0, CentralCorrect: true, PeripheralCorrect: n%2 == 0,
			CentralExpected: "car", CentralAnswer: "car", PeripheralExpected: 2, PeripheralAnswer: n % 8,
			ResponseTime: time.Duration(400+n) * time.Millisecond, At: base.Add(time.Duration(n) * time.Second),
		}
	}

	repo := s.TrialRepo()
	first := []progress.Trial{mk(1), mk(2), mk(3)}
	if err := repo.InsertBatch(ctx, "s1", first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Retrying an overlapping batch adds only the new trial.
	if err := repo.InsertBatch(ctx, "s1", []progress.Trial{mk(2), mk(3), mk(4)}); err != nil {
		t.Fatalf("insert retry: %v", err)
	}
	if err := repo.InsertBatch(ctx, "s1", nil); err != nil {
		t.Fatalf("insert empty: %v", err)
	}

	got, err := repo.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("stored %d trials, want 4", len(got))
	}
	for i, tr := range got {
		want := mk(i + 1)
		if !tr.At.Equal(want.At) {
			t.Errorf("trial %d At = %v, want %v", i+1, tr.At, want.At)
		}
		tr.At = want.At
		if tr != want {
			t.Errorf("trial %d = %+v, want %+v", i+1, tr, want)
		}
	}
}

func TestTrialInsertRequiresSession(t *testing.T) {
	s := openTestStore(t)
	err := s.TrialRepo().InsertBatch(context.Background(), "nope", []progress.Trial{{Number: 1, Level: 1, At: base}})
	if err == nil {
		t.Error("expected foreign key error for unknown session")
	}
}

func TestAggregatePutGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.AggregateRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, difficulty.IconSwap); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: err = %v, want ErrNotFound", err)
	}

	agg := progress.Empty(difficulty.IconSwap)
	for i := 0; i < 3; i++ {
		agg = progress.Fold(agg, progress.SessionSummary{
			SessionID:       fmt.Sprintf("s%d", i),
			TotalTrials:     10,
			Accuracy:        0.5 + 0.2*float64(i),
			AvgResponseMs:   800,
			FinalDifficulty: difficulty.Level(3 + i),
			Rating:          50 + i,
			EndedAt:         base.Add(time.Duration(i) * time.Hour),
		})
	}
	if err := repo.Put(ctx, agg); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, difficulty.IconSwap)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalSessions != 3 || got.TotalTrials != 30 || got.CurrentLevel != 5 || got.Trend != progress.TrendImproving {
		t.Errorf("aggregate = %+v", got)
	}
	if got.BestSessionID != "s2" || !got.LastPlayedAt.Equal(agg.LastPlayedAt) {
		t.Errorf("best/last played = %s/%v", got.BestSessionID, got.LastPlayedAt)
	}
	if len(got.RecentSessions) != 3 || got.RecentSessions[2].SessionID != "s2" {
		t.Errorf("recent sessions = %+v", got.RecentSessions)
	}

	// Last writer wins.
	agg.TotalSessions = 99
	if err := repo.Put(ctx, agg); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, _ = repo.Get(ctx, difficulty.IconSwap)
	if got.TotalSessions != 99 {
		t.Errorf("TotalSessions = %d after overwrite, want 99", got.TotalSessions)
	}

	if err := repo.Put(ctx, progress.Empty(difficulty.DividedAttention)); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d aggregates, want 2", len(all))
	}
}

func TestLevelPutGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.LevelRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "es"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: err = %v, want ErrNotFound", err)
	}

	for _, sub := range []string{"novice", "well-placed"} {
		if err := repo.Put(ctx, LevelRecord{Language: "es", Tier: "A2", SubTier: sub, UpdatedAt: base}); err != nil {
			t.Fatalf("put %s: %v", sub, err)
		}
	}
	got, err := repo.Get(ctx, "es")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tier != "A2" || got.SubTier != "well-placed" || !got.UpdatedAt.Equal(base) {
		t.Errorf("level = %+v", got)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "grade", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "grade", InputTokens: 200, OutputTokens: 70, LatencyMs: 500, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "exercise-gen", InputTokens: 80, OutputTokens: 400, LatencyMs: 900, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 2 || list[0].Purpose != "exercise-gen" || list[0].Sequence <= list[1].Sequence {
		t.Errorf("QueryLLMEvents = %+v, want newest first", list)
	}

	got, err := repo.GetLLMEvent(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ErrorMessage != "boom" || got.Success {
		t.Errorf("GetLLMEvent = %+v", got)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("GetLLMEvent(missing) = %v, %v; want nil, nil", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("usage by purpose = %+v", byPurpose)
	}
	grade := byPurpose[1]
	if grade.Purpose != "grade" || grade.Calls != 2 || grade.InputTokens != 300 || grade.OutputTokens != 120 || grade.AvgLatencyMs != 400 {
		t.Errorf("grade usage = %+v", grade)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-haiku" || byModel[0].Calls != 2 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SessionRepo().Create(ctx, SessionRecord{ID: "s1", Game: difficulty.IconSwap, StartedAt: base, StartLevel: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.TrialRepo().InsertBatch(ctx, "s1", []progress.Trial{{Number: 1, Level: 1, At: base}}); err != nil {
		t.Fatal(err)
	}
	if err := s.AggregateRepo().Put(ctx, progress.Empty(difficulty.IconSwap)); err != nil {
		t.Fatal(err)
	}
	if err := s.LevelRepo().Put(ctx, LevelRecord{Language: "es", Tier: "A1", SubTier: "novice", UpdatedAt: base}); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, table := range []string{tableSessions, tableTrials, tableAggregates, tableLevels, tableLLMEvents} {
		var n int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after reset", table, n)
		}
	}
}
