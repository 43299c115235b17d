package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
)

var aggregateColumns = []string{
	"game", "total_sessions", "total_trials", "accuracy", "best_accuracy", "best_session_id",
	"avg_response_ms", "current_level", "trend", "last_played_at", "recent_sessions",
}

// aggregateRepo implements AggregateRepo.
type aggregateRepo struct {
	db *sql.DB
}

func (r *aggregateRepo) Get(ctx context.Context, kind difficulty.GameKind) (*progress.AggregateStats, error) {
	stmt := builder.Select(aggregateColumns...).
		From(builder.Table(tableAggregates)).
		Where(entsql.EQ("game", kind.String()))
	agg, err := scanAggregate(queryRow(ctx, r.db, stmt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregate: %w", err)
	}
	return agg, nil
}

func (r *aggregateRepo) Put(ctx context.Context, agg progress.AggregateStats) error {
	window := agg.RecentSessions
	if window == nil {
		window = []progress.RecentSession{}
	}
	recent, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("marshal recent sessions: %w", err)
	}

	stmt := builder.Insert(tableAggregates).
		Columns(aggregateColumns...).
		Values(agg.Kind.String(), agg.TotalSessions, agg.TotalTrials, agg.Accuracy, agg.BestAccuracy,
			agg.BestSessionID, agg.AvgResponseMs, int(agg.CurrentLevel), string(agg.Trend),
			toMillis(agg.LastPlayedAt), string(recent)).
		OnConflict(entsql.ConflictColumns("game"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, r.db, stmt); err != nil {
		return fmt.Errorf("put aggregate: %w", err)
	}
	return nil
}

func (r *aggregateRepo) List(ctx context.Context) ([]progress.AggregateStats, error) {
	stmt := builder.Select(aggregateColumns...).
		From(builder.Table(tableAggregates)).
		OrderBy(entsql.Asc("game"))
	rows, err := query(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var out []progress.AggregateStats
	for rows.Next() {
		agg, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, *agg)
	}
	return out, rows.Err()
}

func scanAggregate(row rowScanner) (*progress.AggregateStats, error) {
	var (
		agg        progress.AggregateStats
		game       string
		level      int
		trend      string
		lastPlayed int64
		recent     string
	)
	err := row.Scan(&game, &agg.TotalSessions, &agg.TotalTrials, &agg.Accuracy, &agg.BestAccuracy,
		&agg.BestSessionID, &agg.AvgResponseMs, &level, &trend, &lastPlayed, &recent)
	if err != nil {
		return nil, err
	}
	kind, err := difficulty.ParseGameKind(game)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recent), &agg.RecentSessions); err != nil {
		return nil, fmt.Errorf("unmarshal recent sessions: %w", err)
	}
	agg.Kind = kind
	agg.CurrentLevel = difficulty.Clamp(level)
	agg.Trend = progress.Trend(trend)
	agg.LastPlayedAt = fromMillis(lastPlayed)
	return &agg, nil
}
