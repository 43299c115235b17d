package language

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/timer"
)

// Phase is the state of a language session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReading
	PhaseAnswering
	PhaseGrading
	PhaseResults
)

var phaseNames = [...]string{"loading", "reading", "answering", "grading", "results"}

func (p Phase) String() string {
	if p < PhaseLoading || p > PhaseResults {
		return "unknown"
	}
	return phaseNames[p]
}

// PhaseError is returned when an operation is not valid in the current
// phase.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("language: %s not allowed while %s", e.Op, e.Phase)
}

// AnswerError is returned by Submit when an answer cannot be graded as
// given. Nothing changes; the learner fixes the answer and submits again.
type AnswerError struct {
	Index  int
	Reason string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer %d: %s", e.Index+1, e.Reason)
}

// GradeError is returned when grading fails. The session is back in
// PhaseAnswering with every answer kept, so Submit can be retried.
type GradeError struct {
	Err error
}

func (e *GradeError) Error() string { return "grading failed: " + e.Err.Error() }

func (e *GradeError) Unwrap() error { return e.Err }

// SaveError is returned when a graded session could not be recorded. The
// evaluation stands; Save retries the recording.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return "saving session failed: " + e.Err.Error() }

func (e *SaveError) Unwrap() error { return e.Err }

// Recorder stores graded sessions.
type Recorder interface {
	Record(ctx context.Context, o Outcome) (Progress, error)
}

// Deps are the collaborators of a Session. Recorder may be nil, in which
// case nothing is saved. Nil Clock and Logger use defaults.
type Deps struct {
	Generator Generator
	Grader    Grader
	Recorder  Recorder
	Clock     timer.Clock
	Logger    *slog.Logger
}

// Session is one run of a language game:
// loading → [reading →] answering → grading → results.
type Session struct {
	id    string
	kind  difficulty.GameKind
	lang  Language
	level cefr.Level
	deps  Deps
	log   *slog.Logger

	saveMu sync.Mutex // serializes Save

	mu          sync.Mutex
	phase       Phase
	material    *Material
	answers     []string
	startedAt   time.Time
	answerStart time.Time
	answered    time.Duration // answering time, fixed at submit
	eval        *Evaluation
	progress    *Progress
}

// NewSession creates a session of game kind for lang at level.
func NewSession(kind difficulty.GameKind, lang Language, level cefr.Level, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = timer.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:    id,
		kind:  kind,
		lang:  lang,
		level: level,
		deps:  deps,
		log:   deps.Logger.With("component", "language", "game", kind.String(), "session", id),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Kind returns the game being played.
func (s *Session) Kind() difficulty.GameKind { return s.kind }

// Language returns the session's language.
func (s *Session) Language() Language { return s.lang }

// Level returns the level the session is played at.
func (s *Session) Level() cefr.Level { return s.level }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Load fetches the material. Material read first puts the session in
// PhaseReading, anything else in PhaseAnswering. On failure the session
// stays in PhaseLoading and Load may be called again.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseLoading {
		s.mu.Unlock()
		return &PhaseError{Op: "load", Phase: s.phase}
	}
	s.mu.Unlock()

	m, err := s.deps.Generator.Generate(ctx, s.lang, s.level)
	if err != nil {
		s.log.Warn("material generation failed", "err", err)
		return fmt.Errorf("load exercises: %w", err)
	}
	if m == nil || len(m.Exercises) == 0 {
		return fmt.Errorf("load exercises: generator returned none")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseLoading {
		return &PhaseError{Op: "load", Phase: s.phase}
	}
	s.material = m.clone()
	s.answers = make([]string, len(m.Exercises))
	s.startedAt = s.deps.Clock.Now()
	s.answerStart = s.startedAt
	s.phase = PhaseAnswering
	if m.ReadFirst {
		s.phase = PhaseReading
	}
	return nil
}

// DoneReading ends the reading phase and starts answering.
func (s *Session) DoneReading() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReading {
		return &PhaseError{Op: "finish reading", Phase: s.phase}
	}
	s.answerStart = s.deps.Clock.Now()
	s.phase = PhaseAnswering
	return nil
}

// ReadingBudget is the time allotted to reading the passage, zero when
// the passage is not read first.
func (s *Session) ReadingBudget() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material == nil || !s.material.ReadFirst {
		return 0
	}
	return ReadingBudget(s.level.Tier, s.material.WordCount())
}

// Material returns a copy of the loaded material, or nil before Load.
func (s *Session) Material() *Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material == nil {
		return nil
	}
	return s.material.clone()
}

// Exercises returns a copy of the loaded exercises.
func (s *Session) Exercises() []Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material == nil {
		return nil
	}
	return slices.Clone(s.material.Exercises)
}

// Answers returns a copy of the learner's answers.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.answers)
}

// SetAnswer records the learner's answer to exercise i. A choice is
// answered with the option index in decimal.
func (s *Session) SetAnswer(i int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAnswering {
		return &PhaseError{Op: "answer", Phase: s.phase}
	}
	if i < 0 || i >= len(s.answers) {
		return fmt.Errorf("language: exercise %d out of range 0..%d", i, len(s.answers)-1)
	}
	s.answers[i] = text
	return nil
}

// Submit grades the answers and records the session. An answer that
// cannot be graded returns *AnswerError and changes nothing. A grading
// failure returns *GradeError and puts the session back in PhaseAnswering.
// A recording failure returns the evaluation together with *SaveError.
func (s *Session) Submit(ctx context.Context) (*Evaluation, error) {
	s.mu.Lock()
	if s.phase != PhaseAnswering {
		s.mu.Unlock()
		return nil, &PhaseError{Op: "submit", Phase: s.phase}
	}
	subs := make([]Submission, len(s.material.Exercises))
	for i, e := range s.material.Exercises {
		subs[i] = Submission{Exercise: e, Answer: s.answers[i]}
		if err := checkAnswer(i, subs[i]); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	m := s.material
	s.answered = s.deps.Clock.Now().Sub(s.answerStart)
	s.phase = PhaseGrading
	s.mu.Unlock()

	eval, err := s.grade(ctx, m, subs)

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseAnswering
		s.mu.Unlock()
		s.log.Warn("grading failed", "err", err)
		return nil, &GradeError{Err: err}
	}
	s.eval = eval
	s.phase = PhaseResults
	s.mu.Unlock()

	s.log.Info("session graded", "overall", eval.Overall, "correct", eval.CorrectCount(), "items", len(eval.Items))
	if err := s.Save(ctx); err != nil {
		return eval, err
	}
	return eval, nil
}

func (s *Session) grade(ctx context.Context, m *Material, subs []Submission) (*Evaluation, error) {
	report, err := s.deps.Grader.Grade(ctx, s.lang, s.level, m, subs)
	if err != nil {
		return nil, err
	}
	eval, err := report.Evaluation(len(subs))
	if err != nil {
		return nil, err
	}
	for i := range eval.Items {
		eval.Items[i].Kind = subs[i].Kind
	}
	return eval, nil
}

func checkAnswer(i int, sub Submission) error {
	switch sub.Kind {
	case ItemChoice:
		n, err := strconv.Atoi(strings.TrimSpace(sub.Answer))
		if err != nil || n < 0 || n >= len(sub.Options) {
			return &AnswerError{Index: i, Reason: "no option chosen"}
		}
	case ItemSummary:
		words := WordCount(sub.Answer)
		if words < sub.MinWords || (sub.MaxWords > 0 && words > sub.MaxWords) {
			return &AnswerError{Index: i, Reason: fmt.Sprintf("summary has %d words, write %d-%d", words, sub.MinWords, sub.MaxWords)}
		}
	}
	return nil
}

// Save records the graded session. It is a no-op once it has succeeded.
func (s *Session) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.phase != PhaseResults {
		s.mu.Unlock()
		return &PhaseError{Op: "save", Phase: s.phase}
	}
	if s.progress != nil || s.deps.Recorder == nil {
		s.mu.Unlock()
		return nil
	}
	o := Outcome{
		SessionID:   s.id,
		Kind:        s.kind,
		Language:    s.lang,
		Level:       s.level,
		StartedAt:   s.startedAt,
		ReadingTime: s.answerStart.Sub(s.startedAt),
		AnswerTime:  s.answered,
		Evaluation:  s.eval,
	}
	s.mu.Unlock()

	p, err := s.deps.Recorder.Record(ctx, o)
	if err != nil {
		s.log.Warn("session not saved", "err", err)
		return &SaveError{Err: err}
	}

	s.mu.Lock()
	s.progress = &p
	s.mu.Unlock()
	return nil
}

// Evaluation returns the graded result once in PhaseResults.
func (s *Session) Evaluation() (*Evaluation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval, s.eval != nil
}

// Progress returns what recording the session changed, once saved.
func (s *Session) Progress() (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return Progress{}, false
	}
	return *s.progress, true
}
