package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
)

var trialColumns = []string{
	"session_id", "number", "level", "correct", "central_correct", "peripheral_correct",
	"central_expected", "central_answer", "peripheral_expected", "peripheral_answer",
	"response_us", "timed_out", "at",
}

// trialRepo implements TrialRepo.
type trialRepo struct {
	db *sql.DB
}

func (r *trialRepo) InsertBatch(ctx context.Context, sessionID string, trials []progress.Trial) error {
	if len(trials) == 0 {
		return nil
	}

	stmt := builder.Insert(tableTrials).Columns(trialColumns...)
	for _, t := range trials {
		stmt.Values(sessionID, t.Number, int(t.Level), t.Correct, t.CentralCorrect, t.PeripheralCorrect,
			t.CentralExpected, t.CentralAnswer, t.PeripheralExpected, t.PeripheralAnswer,
			t.ResponseTime.Microseconds(), t.TimedOut, toMillis(t.At))
	}
	stmt.OnConflict(entsql.ConflictColumns("session_id", "number"), entsql.DoNothing())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trial batch: %w", err)
	}
	defer tx.Rollback()

	if _, err := exec(ctx, tx, stmt); err != nil {
		return fmt.Errorf("insert trials: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trial batch: %w", err)
	}
	return nil
}

func (r *trialRepo) ListBySession(ctx context.Context, sessionID string) ([]progress.Trial, error) {
	stmt := builder.Select(trialColumns[1:]...).
		From(builder.Table(tableTrials)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Asc("number"))

	rows, err := query(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var out []progress.Trial
	for rows.Next() {
		var (
			t          progress.Trial
			level      int
			responseUs int64
			at         int64
		)
		err := rows.Scan(&t.Number, &level, &t.Correct, &t.CentralCorrect, &t.PeripheralCorrect,
			&t.CentralExpected, &t.CentralAnswer, &t.PeripheralExpected, &t.PeripheralAnswer,
			&responseUs, &t.TimedOut, &at)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		t.Level = difficulty.Clamp(level)
		t.ResponseTime = time.Duration(responseUs) * time.Microsecond
		t.At = fromMillis(at)
		out = append(out, t)
	}
	return out, rows.Err()
}
