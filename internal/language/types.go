// Package language runs the LLM-graded language games. Material is
// generated for the learner's CEFR level: sentences to rewrite, or a news
// article or paragraph to read, question and summarize. A grader scores
// the answers and tense rewrite results move the learner along the level
// ladder.
package language

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/focuslab/internal/cefr"
)

// BatterySize is the number of exercises in one session.
const BatterySize = 10

// Score bounds and the pass mark used when a grader omits correctness.
const (
	MinScore  = 1
	MaxScore  = 10
	PassScore = 6
)

// Language is an ISO 639-1 code of a supported language.
type Language string

var languageNames = map[Language]string{
	"en": "English",
	"fr": "French",
	"zh": "Chinese (Simplified)",
	"he": "Hebrew",
	"de": "German",
	"it": "Italian",
	"es": "Spanish",
}

// Languages returns the supported language codes in sorted order.
func Languages() []Language {
	out := make([]Language, 0, len(languageNames))
	for l := range languageNames {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// ParseLanguage validates a language code.
func ParseLanguage(code string) (Language, error) {
	l := Language(code)
	if _, ok := languageNames[l]; !ok {
		return "", fmt.Errorf("unsupported language %q", code)
	}
	return l, nil
}

// Name returns the English name of the language.
func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return "English"
}

// Transformation is the kind of rewrite an exercise asks for.
type Transformation string

const (
	FutureTense    Transformation = "future-tense"
	PastTense      Transformation = "past-tense"
	PresentTense   Transformation = "present-tense"
	Negation       Transformation = "negation"
	QuestionForm   Transformation = "question-form"
	ActiveVoice    Transformation = "active-voice"
	PassiveVoice   Transformation = "passive-voice"
	Conditional    Transformation = "conditional"
	ReportedSpeech Transformation = "reported-speech"
	Subjunctive    Transformation = "subjunctive"
	LiteraryPast   Transformation = "literary-past"
)

var (
	basicTransformations        = []Transformation{FutureTense, PastTense, PresentTense, Negation, QuestionForm}
	intermediateTransformations = append(slices.Clone(basicTransformations), ActiveVoice, PassiveVoice, Conditional, ReportedSpeech)
	allTransformations          = append(slices.Clone(intermediateTransformations), Subjunctive, LiteraryPast)
)

// TransformationsFor returns the rewrites appropriate to a tier. Harder
// tiers unlock voice, mood and register changes.
func TransformationsFor(t cefr.Tier) []Transformation {
	switch {
	case t <= cefr.A2:
		return basicTransformations
	case t <= cefr.B2:
		return intermediateTransformations
	default:
		return allTransformations
	}
}

// ItemKind is how an exercise is answered.
type ItemKind int

const (
	// ItemRewrite is a free-text rewrite of Original.
	ItemRewrite ItemKind = iota
	// ItemChoice is a multiple-choice question; the answer is the option
	// index in decimal.
	ItemChoice
	// ItemSummary is a free-text summary of the passage within a word range.
	ItemSummary
)

func (k ItemKind) String() string {
	switch k {
	case ItemRewrite:
		return "rewrite"
	case ItemChoice:
		return "choice"
	case ItemSummary:
		return "summary"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// Exercise is one item of a session.
type Exercise struct {
	Kind ItemKind

	// Original is the sentence to rewrite or the question to answer.
	Original       string
	Task           string
	Transformation Transformation
	Reference      string

	Options       []string
	CorrectOption int
	Quote         string // passage excerpt supporting CorrectOption

	MinWords, MaxWords int
}

// Material is everything one session is played on.
type Material struct {
	Title string
	// Passage holds the paragraphs of the text being read or summarized.
	Passage []string
	// ReadFirst hides the passage once answering starts.
	ReadFirst bool
	Exercises []Exercise
}

// Text returns the passage with paragraphs separated by blank lines.
func (m *Material) Text() string {
	return strings.Join(m.Passage, "\n\n")
}

// WordCount counts whitespace-separated words in the passage.
func (m *Material) WordCount() int {
	n := 0
	for _, p := range m.Passage {
		n += WordCount(p)
	}
	return n
}

func (m *Material) clone() *Material {
	c := *m
	c.Passage = slices.Clone(m.Passage)
	c.Exercises = slices.Clone(m.Exercises)
	return &c
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Submission pairs an exercise with the learner's answer.
type Submission struct {
	Exercise
	Answer string
}

// ItemScore is the grade of one answer.
type ItemScore struct {
	Index      int
	Kind       ItemKind
	Score      int
	Correct    bool
	Feedback   string
	Suggestion string
}

// Credit is the item's share of accuracy: a summary earns its score out of
// MaxScore, anything else all or nothing.
func (it ItemScore) Credit() float64 {
	if it.Kind == ItemSummary {
		return float64(it.Score) / MaxScore
	}
	if it.Correct {
		return 1
	}
	return 0
}

// Evaluation is the graded session.
type Evaluation struct {
	Items    []ItemScore
	Overall  float64
	Feedback string
	Summary  *SummaryScore // set when a summary was graded
}

// CorrectCount returns how many items were judged correct.
func (e *Evaluation) CorrectCount() int {
	n := 0
	for _, it := range e.Items {
		if it.Correct {
			n++
		}
	}
	return n
}

// Accuracy is the mean credit of the items.
func (e *Evaluation) Accuracy() float64 {
	if len(e.Items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range e.Items {
		sum += it.Credit()
	}
	return sum / float64(len(e.Items))
}

// Generator produces the material of a session.
type Generator interface {
	Generate(ctx context.Context, lang Language, level cefr.Level) (*Material, error)
}

// Grader scores a session's answers.
type Grader interface {
	Grade(ctx context.Context, lang Language, level cefr.Level, m *Material, subs []Submission) (*Report, error)
}
