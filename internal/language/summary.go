package language

import (
	"fmt"
	"math"
	"time"

	"github.com/abhisek/focuslab/internal/cefr"
)

// SummaryPassScore is the overall summary score that counts as correct.
const SummaryPassScore = 5

// Word ranges of the summaries each game asks for.
const (
	SpeedSummaryMinWords  = 10
	SpeedSummaryMaxWords  = 20
	ComprehensionMinWords = 30
	ComprehensionMaxWords = 60
)

// IssueType classifies a flagged sentence of a summary.
type IssueType string

const (
	IssueGrammar    IssueType = "grammar"
	IssueVocabulary IssueType = "vocabulary"
	IssueAccuracy   IssueType = "accuracy"
)

// SentenceIssue is one problem found in a summary.
type SentenceIssue struct {
	Sentence    string    `json:"sentence"`
	Type        IssueType `json:"issueType"`
	Explanation string    `json:"explanation"`
	Suggestion  string    `json:"suggestion"`
}

// SummaryScore is the grade of a summary.
type SummaryScore struct {
	Accuracy   float64         `json:"accuracyScore"`
	Vocabulary float64         `json:"vocabularyScore"`
	Grammar    float64         `json:"grammarScore"`
	Overall    float64         `json:"overallScore"`
	Feedback   string          `json:"feedback"`
	Issues     []SentenceIssue `json:"sentenceIssues"`
}

// Passed reports whether the summary reached SummaryPassScore.
func (s *SummaryScore) Passed() bool {
	return s.Overall >= SummaryPassScore
}

func (s *SummaryScore) validate() error {
	for _, v := range []struct {
		name  string
		score float64
	}{
		{"accuracy", s.Accuracy},
		{"vocabulary", s.Vocabulary},
		{"grammar", s.Grammar},
		{"overall", s.Overall},
	} {
		if v.score < MinScore || v.score > MaxScore || math.IsNaN(v.score) {
			return fmt.Errorf("summary %s score %v outside %d..%d", v.name, v.score, MinScore, MaxScore)
		}
	}
	return nil
}

var readingSecsPer100 = map[cefr.Tier]float64{
	cefr.A1: 120,
	cefr.A2: 90,
	cefr.B1: 60,
	cefr.B2: 45,
	cefr.C1: 35,
	cefr.C2: 25,
}

// ReadingBudget is the time a learner at tier gets to read a passage of
// the given length. Lower tiers read slower.
func ReadingBudget(t cefr.Tier, words int) time.Duration {
	per, ok := readingSecsPer100[t]
	if !ok {
		per = readingSecsPer100[cefr.B1]
	}
	secs := math.Ceil(float64(words) / 100 * per)
	return time.Duration(secs) * time.Second
}
