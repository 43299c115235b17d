package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableSessions   = "sessions"
	tableTrials     = "trials"
	tableAggregates = "aggregate_stats"
	tableLevels     = "language_levels"
	tableLLMEvents  = "llm_events"
)

// Timestamps are stored as Unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id              TEXT PRIMARY KEY,
		game            TEXT NOT NULL,
		started_at      INTEGER NOT NULL,
		ended_at        INTEGER,
		start_level     INTEGER NOT NULL,
		final_level     INTEGER NOT NULL,
		total_trials    INTEGER NOT NULL DEFAULT 0,
		correct_trials  INTEGER NOT NULL DEFAULT 0,
		accuracy        REAL NOT NULL DEFAULT 0,
		avg_response_ms REAL NOT NULL DEFAULT 0,
		rating          INTEGER NOT NULL DEFAULT 0,
		language        TEXT NOT NULL DEFAULT '',
		cefr_level      TEXT NOT NULL DEFAULT '',
		sub_level       TEXT NOT NULL DEFAULT '',
		overall_score   REAL NOT NULL DEFAULT 0,
		feedback        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_game_started ON sessions (game, started_at)`,
	`CREATE TABLE IF NOT EXISTS trials (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id          TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		number              INTEGER NOT NULL,
		level               INTEGER NOT NULL,
		correct             INTEGER NOT NULL,
		central_correct     INTEGER NOT NULL,
		peripheral_correct  INTEGER NOT NULL,
		central_expected    TEXT NOT NULL DEFAULT '',
		central_answer      TEXT NOT NULL DEFAULT '',
		peripheral_expected INTEGER NOT NULL DEFAULT 0,
		peripheral_answer   INTEGER NOT NULL DEFAULT 0,
		response_us         INTEGER NOT NULL,
		timed_out           INTEGER NOT NULL DEFAULT 0,
		at                  INTEGER NOT NULL,
		UNIQUE (session_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS aggregate_stats (
		game            TEXT PRIMARY KEY,
		total_sessions  INTEGER NOT NULL,
		total_trials    INTEGER NOT NULL,
		accuracy        REAL NOT NULL,
		best_accuracy   REAL NOT NULL,
		best_session_id TEXT NOT NULL,
		avg_response_ms REAL NOT NULL,
		current_level   INTEGER NOT NULL,
		trend           TEXT NOT NULL,
		last_played_at  INTEGER NOT NULL,
		recent_sessions TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS language_levels (
		language   TEXT PRIMARY KEY,
		tier       TEXT NOT NULL,
		sub_tier   TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// migrate creates missing tables and indexes. It is idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
