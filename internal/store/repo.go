package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionRecord is one played session. Language fields are empty for timed
// games.
type SessionRecord struct {
	ID         string
	Game       difficulty.GameKind
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is open
	StartLevel difficulty.Level
	FinalLevel difficulty.Level

	TotalTrials   int
	CorrectTrials int
	Accuracy      float64
	AvgResponseMs float64
	Rating        int

	Language     string
	CEFRLevel    string
	SubLevel     string
	OverallScore float64
	Feedback     string
}

// Finished reports whether the session has been finalized.
func (r SessionRecord) Finished() bool { return !r.EndedAt.IsZero() }

// SessionFilter narrows SessionRepo.Recent.
type SessionFilter struct {
	Game         *difficulty.GameKind // nil = every game
	FinishedOnly bool
	Limit        int // 0 = unlimited
}

// SessionRepo manages session rows.
type SessionRepo interface {
	// Create inserts a new, open session.
	Create(ctx context.Context, rec SessionRecord) error

	// Finalize writes the end time and summary fields of an existing
	// session. Returns ErrNotFound if the session does not exist.
	Finalize(ctx context.Context, rec SessionRecord) error

	// Get returns one session or ErrNotFound.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// Recent returns sessions newest first.
	Recent(ctx context.Context, f SessionFilter) ([]SessionRecord, error)

	// RecentLanguageScores returns up to limit overall scores of finished
	// sessions of game for one language level, oldest first.
	RecentLanguageScores(ctx context.Context, game difficulty.GameKind, language, level, subLevel string, limit int) ([]float64, error)
}

// TrialRepo manages trial rows.
type TrialRepo interface {
	// InsertBatch writes trials in one transaction. Trials already stored
	// for the same session and number are skipped, so a retried batch
	// never duplicates rows.
	InsertBatch(ctx context.Context, sessionID string, trials []progress.Trial) error

	// ListBySession returns a session's trials in trial-number order.
	ListBySession(ctx context.Context, sessionID string) ([]progress.Trial, error)
}

// AggregateRepo stores one AggregateStats row per game kind.
type AggregateRepo interface {
	// Get returns the aggregate for kind or ErrNotFound.
	Get(ctx context.Context, kind difficulty.GameKind) (*progress.AggregateStats, error)

	// Put replaces the aggregate for agg.Kind. Last writer wins.
	Put(ctx context.Context, agg progress.AggregateStats) error

	// List returns every stored aggregate.
	List(ctx context.Context) ([]progress.AggregateStats, error)
}

// LevelRecord is the learner's current CEFR level for one language.
type LevelRecord struct {
	Language  string
	Tier      string
	SubTier   string
	UpdatedAt time.Time
}

// LevelRepo stores language levels.
type LevelRepo interface {
	// Get returns the level for language or ErrNotFound.
	Get(ctx context.Context, language string) (*LevelRecord, error)

	// Put upserts the level for rec.Language.
	Put(ctx context.Context, rec LevelRecord) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose sums usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel sums usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
