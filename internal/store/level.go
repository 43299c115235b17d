package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// levelRepo implements LevelRepo.
type levelRepo struct {
	db *sql.DB
}

func (r *levelRepo) Get(ctx context.Context, language string) (*LevelRecord, error) {
	stmt := builder.Select("language", "tier", "sub_tier", "updated_at").
		From(builder.Table(tableLevels)).
		Where(entsql.EQ("language", language))

	var (
		rec     LevelRecord
		updated int64
	)
	err := queryRow(ctx, r.db, stmt).Scan(&rec.Language, &rec.Tier, &rec.SubTier, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get language level: %w", err)
	}
	rec.UpdatedAt = fromMillis(updated)
	return &rec, nil
}

func (r *levelRepo) Put(ctx context.Context, rec LevelRecord) error {
	stmt := builder.Insert(tableLevels).
		Columns("language", "tier", "sub_tier", "updated_at").
		Values(rec.Language, rec.Tier, rec.SubTier, toMillis(rec.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("language"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, r.db, stmt); err != nil {
		return fmt.Errorf("put language level: %w", err)
	}
	return nil
}
