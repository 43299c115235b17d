package language

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/timer"
)

type fakeGenerator struct {
	exercises []Exercise
	material  *Material
	err       error
}

func (f *fakeGenerator) Generate(context.Context, Language, cefr.Level) (*Material, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.material != nil {
		return f.material, nil
	}
	return &Material{Exercises: f.exercises}, nil
}

// fakeGrader scores every answer 8 unless err or report is set.
type fakeGrader struct {
	err      error
	report   *Report
	got      []Submission
	material *Material
}

func (f *fakeGrader) Grade(_ context.Context, _ Language, _ cefr.Level, m *Material, subs []Submission) (*Report, error) {
	f.got = subs
	f.material = m
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	r := &Report{Overall: 8, Feedback: "nice"}
	for i := range subs {
		r.Items = append(r.Items, ReportItem{Index: i, Score: 8})
	}
	return r, nil
}

type fakeRecorder struct {
	err      error
	outcomes []Outcome
}

func (f *fakeRecorder) Record(_ context.Context, o Outcome) (Progress, error) {
	f.outcomes = append(f.outcomes, o)
	if f.err != nil {
		return Progress{}, f.err
	}
	return Progress{Previous: o.Level, Result: cefr.Result{Level: o.Level}}, nil
}

func battery(n int) []Exercise {
	out := make([]Exercise, n)
	for i := range out {
		out[i] = Exercise{Original: fmt.Sprintf("sentence %d", i), Task: "rewrite", Transformation: PastTense, Reference: fmt.Sprintf("ref %d", i)}
	}
	return out
}

func newTestSession(t *testing.T, gen *fakeGenerator, grader *fakeGrader, rec *fakeRecorder) (*Session, *timer.Manual) {
	t.Helper()
	clock := timer.NewManual(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	deps := Deps{Generator: gen, Grader: grader, Clock: clock}
	if rec != nil {
		deps.Recorder = rec
	}
	return NewSession(difficulty.TenseRewrite, "it", cefr.MustParse("B1", "novice"), deps), clock
}

func TestSessionHappyPath(t *testing.T) {
	grader := &fakeGrader{}
	rec := &fakeRecorder{}
	s, clock := newTestSession(t, &fakeGenerator{exercises: battery(3)}, grader, rec)
	ctx := context.Background()

	assert.Equal(t, PhaseLoading, s.Phase())
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, PhaseAnswering, s.Phase())
	assert.Len(t, s.Exercises(), 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SetAnswer(i, fmt.Sprintf("answer %d", i)))
	}
	clock.Advance(90 * time.Second)

	eval, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, s.Phase())
	assert.Equal(t, 3, eval.CorrectCount())
	assert.Equal(t, "answer 2", grader.got[2].Answer)
	assert.Equal(t, "ref 2", grader.got[2].Reference)

	require.Len(t, rec.outcomes, 1)
	o := rec.outcomes[0]
	assert.Equal(t, s.ID(), o.SessionID)
	assert.Equal(t, difficulty.TenseRewrite, o.Kind)
	assert.Equal(t, Language("it"), o.Language)
	assert.Equal(t, 90*time.Second, o.AnswerTime)

	_, ok := s.Progress()
	assert.True(t, ok)

	// Saving again does not record twice.
	require.NoError(t, s.Save(ctx))
	assert.Len(t, rec.outcomes, 1)
}

func TestSessionGradeFailureKeepsAnswers(t *testing.T) {
	grader := &fakeGrader{err: errors.New("timeout")}
	rec := &fakeRecorder{}
	s, _ := newTestSession(t, &fakeGenerator{exercises: battery(2)}, grader, rec)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetAnswer(0, "first"))
	require.NoError(t, s.SetAnswer(1, "second"))

	_, err := s.Submit(ctx)
	var gradeErr *GradeError
	require.ErrorAs(t, err, &gradeErr)
	assert.EqualError(t, gradeErr.Unwrap(), "timeout")
	assert.Equal(t, PhaseAnswering, s.Phase())
	assert.Equal(t, []string{"first", "second"}, s.Answers())
	assert.Empty(t, rec.outcomes)

	// Retry succeeds with the same answers.
	grader.err = nil
	_, err = s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", grader.got[1].Answer)
}

func TestSessionMalformedReportRollsBack(t *testing.T) {
	grader := &fakeGrader{report: &Report{Items: []ReportItem{{Index: 0, Score: 42}}, Overall: 5}}
	s, _ := newTestSession(t, &fakeGenerator{exercises: battery(1)}, grader, nil)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetAnswer(0, "x"))
	_, err := s.Submit(ctx)

	var shape *ShapeError
	require.ErrorAs(t, err, &shape)
	var gradeErr *GradeError
	require.ErrorAs(t, err, &gradeErr)
	assert.Equal(t, PhaseAnswering, s.Phase())
	_, ok := s.Evaluation()
	assert.False(t, ok)
}

func TestSessionSaveFailureCanRetry(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	s, clock := newTestSession(t, &fakeGenerator{exercises: battery(2)}, &fakeGrader{}, rec)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	clock.Advance(40 * time.Second)
	eval, err := s.Submit(ctx)
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	require.NotNil(t, eval, "evaluation survives a save failure")
	assert.Equal(t, PhaseResults, s.Phase())
	_, ok := s.Progress()
	assert.False(t, ok)

	// Time spent on the results screen before retrying is not answer time.
	clock.Advance(5 * time.Minute)
	rec.err = nil
	require.NoError(t, s.Save(ctx))
	_, ok = s.Progress()
	assert.True(t, ok)
	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, 40*time.Second, rec.outcomes[0].AnswerTime)
	assert.Equal(t, 40*time.Second, rec.outcomes[1].AnswerTime)
}

func TestSessionLoadFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("offline")}
	s, _ := newTestSession(t, gen, &fakeGrader{}, nil)
	ctx := context.Background()

	require.Error(t, s.Load(ctx))
	assert.Equal(t, PhaseLoading, s.Phase())

	gen.err = nil
	gen.exercises = nil
	require.Error(t, s.Load(ctx), "empty battery is an error")

	gen.exercises = battery(1)
	require.NoError(t, s.Load(ctx))
}

func TestSessionPhaseErrors(t *testing.T) {
	s, _ := newTestSession(t, &fakeGenerator{exercises: battery(1)}, &fakeGrader{}, nil)
	ctx := context.Background()

	var phaseErr *PhaseError
	assert.ErrorAs(t, s.SetAnswer(0, "early"), &phaseErr)
	_, err := s.Submit(ctx)
	assert.ErrorAs(t, err, &phaseErr)
	assert.ErrorAs(t, s.Save(ctx), &phaseErr)

	require.NoError(t, s.Load(ctx))
	assert.ErrorAs(t, s.Load(ctx), &phaseErr)
	assert.Error(t, s.SetAnswer(5, "out of range"))

	_, err = s.Submit(ctx)
	require.NoError(t, err)
	assert.ErrorAs(t, s.SetAnswer(0, "late"), &phaseErr)
	assert.Equal(t, "results", phaseErr.Phase.String())
}

func comprehensionMaterial() *Material {
	return &Material{
		Title:     "Rooftop gardens",
		Passage:   []string{strings.Repeat("word ", 150), strings.Repeat("word ", 150)},
		ReadFirst: true,
		Exercises: []Exercise{
			{Kind: ItemChoice, Original: "Where?", Options: []string{"roof", "cellar", "park", "sea"}, CorrectOption: 0, Quote: "on the roof"},
			{Kind: ItemSummary, Original: "Summarize", MinWords: 3, MaxWords: 6},
		},
	}
}

func TestSessionReadingPhase(t *testing.T) {
	grader := &fakeGrader{}
	rec := &fakeRecorder{}
	clock := timer.NewManual(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	s := NewSession(difficulty.Comprehension, "en", cefr.MustParse("B1", "novice"), Deps{
		Generator: &fakeGenerator{material: comprehensionMaterial()},
		Grader:    grader,
		Recorder:  rec,
		Clock:     clock,
	})
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, PhaseReading, s.Phase())
	// 300 words at B1 pace.
	assert.Equal(t, 180*time.Second, s.ReadingBudget())

	var phaseErr *PhaseError
	assert.ErrorAs(t, s.SetAnswer(0, "0"), &phaseErr, "no answers while reading")

	clock.Advance(2 * time.Minute)
	require.NoError(t, s.DoneReading())
	assert.Equal(t, PhaseAnswering, s.Phase())
	assert.ErrorAs(t, s.DoneReading(), &phaseErr)

	require.NoError(t, s.SetAnswer(0, "0"))
	require.NoError(t, s.SetAnswer(1, "gardens grow on city roofs"))
	clock.Advance(time.Minute)
	_, err := s.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Rooftop gardens", grader.material.Title)
	eval, _ := s.Evaluation()
	assert.Equal(t, ItemChoice, eval.Items[0].Kind)
	assert.Equal(t, ItemSummary, eval.Items[1].Kind)

	require.Len(t, rec.outcomes, 1)
	o := rec.outcomes[0]
	assert.Equal(t, difficulty.Comprehension, o.Kind)
	assert.Equal(t, 2*time.Minute, o.ReadingTime)
	assert.Equal(t, time.Minute, o.AnswerTime)
}

func TestSessionRejectsUngradableAnswers(t *testing.T) {
	grader := &fakeGrader{}
	s := NewSession(difficulty.Comprehension, "en", cefr.Bottom, Deps{
		Generator: &fakeGenerator{material: comprehensionMaterial()},
		Grader:    grader,
		Clock:     timer.NewManual(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)),
	})
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.DoneReading())

	tests := []struct {
		name    string
		choice  string
		summary string
		index   int
	}{
		{"no option", "", "gardens grow on roofs", 0},
		{"option out of range", "4", "gardens grow on roofs", 0},
		{"summary too short", "1", "gardens", 1},
		{"summary too long", "1", "gardens grow on the roofs of big cities", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.SetAnswer(0, tt.choice))
			require.NoError(t, s.SetAnswer(1, tt.summary))
			_, err := s.Submit(ctx)
			var answerErr *AnswerError
			require.ErrorAs(t, err, &answerErr)
			assert.Equal(t, tt.index, answerErr.Index)
			assert.Equal(t, PhaseAnswering, s.Phase())
		})
	}
	assert.Nil(t, grader.got, "nothing reached the grader")
}

func TestSessionWithoutReadingStartsAnswering(t *testing.T) {
	m := comprehensionMaterial()
	m.ReadFirst = false
	s := NewSession(difficulty.SpeedSummary, "fr", cefr.Bottom, Deps{
		Generator: &fakeGenerator{material: m},
		Grader:    &fakeGrader{},
	})
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, PhaseAnswering, s.Phase())
	assert.Zero(t, s.ReadingBudget())
	assert.Equal(t, m.Passage, s.Material().Passage)
}
