package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/focuslab/internal/difficulty"
)

// recentLanguageScan bounds how many sessions RecentLanguageScores reads
// before filtering.
const recentLanguageScan = 50

var sessionColumns = []string{
	"id", "game", "started_at", "ended_at", "start_level", "final_level",
	"total_trials", "correct_trials", "accuracy", "avg_response_ms", "rating",
	"language", "cefr_level", "sub_level", "overall_score", "feedback",
}

// sessionRepo implements SessionRepo.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, rec SessionRecord) error {
	stmt := builder.Insert(tableSessions).
		Columns("id", "game", "started_at", "start_level", "final_level",
			"language", "cefr_level", "sub_level").
		Values(rec.ID, rec.Game.String(), toMillis(rec.StartedAt), int(rec.StartLevel), int(rec.StartLevel),
			rec.Language, rec.CEFRLevel, rec.SubLevel)
	if _, err := exec(ctx, r.db, stmt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Finalize(ctx context.Context, rec SessionRecord) error {
	stmt := builder.Update(tableSessions).
		Set("ended_at", toMillis(rec.EndedAt)).
		Set("final_level", int(rec.FinalLevel)).
		Set("total_trials", rec.TotalTrials).
		Set("correct_trials", rec.CorrectTrials).
		Set("accuracy", rec.Accuracy).
		Set("avg_response_ms", rec.AvgResponseMs).
		Set("rating", rec.Rating).
		Set("overall_score", rec.OverallScore).
		Set("feedback", rec.Feedback).
		Where(entsql.EQ("id", rec.ID))
	res, err := exec(ctx, r.db, stmt)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finalize session %s: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	stmt := builder.Select(sessionColumns...).
		From(builder.Table(tableSessions)).
		Where(entsql.EQ("id", id))
	rec, err := scanSession(queryRow(ctx, r.db, stmt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

func (r *sessionRepo) Recent(ctx context.Context, f SessionFilter) ([]SessionRecord, error) {
	stmt := builder.Select(sessionColumns...).
		From(builder.Table(tableSessions)).
		OrderBy(entsql.Desc("started_at"))
	var preds []*entsql.Predicate
	if f.Game != nil {
		preds = append(preds, entsql.EQ("game", f.Game.String()))
	}
	if f.FinishedOnly {
		preds = append(preds, entsql.NotNull("ended_at"))
	}
	if len(preds) > 0 {
		stmt.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		stmt.Limit(f.Limit)
	}

	rows, err := query(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) RecentLanguageScores(ctx context.Context, game difficulty.GameKind, language, level, subLevel string, limit int) ([]float64, error) {
	sessions, err := r.Recent(ctx, SessionFilter{Game: &game, FinishedOnly: true, Limit: recentLanguageScan})
	if err != nil {
		return nil, err
	}

	var matched []SessionRecord
	for _, s := range sessions {
		if s.Language == language && s.CEFRLevel == level && s.SubLevel == subLevel {
			matched = append(matched, s)
		}
	}
	slices.SortStableFunc(matched, func(a, b SessionRecord) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	scores := make([]float64, len(matched))
	for i, s := range matched {
		// Oldest first.
		scores[len(matched)-1-i] = s.OverallScore
	}
	return scores, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		rec        SessionRecord
		game       string
		startedAt  int64
		endedAt    sql.NullInt64
		startLevel int
		finalLevel int
	)
	err := row.Scan(&rec.ID, &game, &startedAt, &endedAt, &startLevel, &finalLevel,
		&rec.TotalTrials, &rec.CorrectTrials, &rec.Accuracy, &rec.AvgResponseMs, &rec.Rating,
		&rec.Language, &rec.CEFRLevel, &rec.SubLevel, &rec.OverallScore, &rec.Feedback)
	if err != nil {
		return nil, err
	}
	kind, err := difficulty.ParseGameKind(game)
	if err != nil {
		return nil, err
	}
	rec.Game = kind
	rec.StartedAt = fromMillis(startedAt)
	if endedAt.Valid {
		rec.EndedAt = fromMillis(endedAt.Int64)
	}
	rec.StartLevel = difficulty.Clamp(startLevel)
	rec.FinalLevel = difficulty.Clamp(finalLevel)
	return &rec, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
