package language

import (
	"fmt"
	"math"
)

// Report is a grader's raw answer. Correct may be nil, in which case the
// item passes when its score reaches PassScore.
type Report struct {
	Items    []ReportItem `json:"sentenceScores"`
	Overall  float64      `json:"overallScore"`
	Feedback string       `json:"feedback"`

	// Summary is the grade of the session's summary, if it had one.
	Summary *SummaryScore `json:"-"`
}

// ReportItem is one graded answer as returned by a grader.
type ReportItem struct {
	Index      int      `json:"index"`
	Kind       ItemKind `json:"-"`
	Score      float64  `json:"score"`
	Correct    *bool    `json:"correct"`
	Feedback   string   `json:"feedback"`
	Suggestion string   `json:"suggestion"`
}

// ShapeError reports a grader answer that cannot be used as is.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "malformed grade report: " + e.Reason
}

// Evaluation checks the report against a battery of n submissions and
// converts it. Every index must appear exactly once and every score must
// be a whole number in [MinScore, MaxScore].
func (r *Report) Evaluation(n int) (*Evaluation, error) {
	if r == nil {
		return nil, &ShapeError{Reason: "empty report"}
	}
	if len(r.Items) != n {
		return nil, &ShapeError{Reason: fmt.Sprintf("got %d scores for %d answers", len(r.Items), n)}
	}

	items := make([]ItemScore, n)
	seen := make([]bool, n)
	for _, it := range r.Items {
		if it.Index < 0 || it.Index >= n {
			return nil, &ShapeError{Reason: fmt.Sprintf("index %d out of range", it.Index)}
		}
		if seen[it.Index] {
			return nil, &ShapeError{Reason: fmt.Sprintf("index %d scored twice", it.Index)}
		}
		if it.Score < MinScore || it.Score > MaxScore || it.Score != math.Trunc(it.Score) {
			return nil, &ShapeError{Reason: fmt.Sprintf("score %v for item %d outside %d..%d", it.Score, it.Index, MinScore, MaxScore)}
		}
		seen[it.Index] = true

		correct := int(it.Score) >= PassScore
		if it.Correct != nil {
			correct = *it.Correct
		}
		items[it.Index] = ItemScore{
			Index:      it.Index,
			Kind:       it.Kind,
			Score:      int(it.Score),
			Correct:    correct,
			Feedback:   it.Feedback,
			Suggestion: it.Suggestion,
		}
	}

	if r.Overall < MinScore || r.Overall > MaxScore {
		return nil, &ShapeError{Reason: fmt.Sprintf("overall score %v outside %d..%d", r.Overall, MinScore, MaxScore)}
	}

	if r.Summary != nil {
		if err := r.Summary.validate(); err != nil {
			return nil, &ShapeError{Reason: err.Error()}
		}
	}

	return &Evaluation{Items: items, Overall: r.Overall, Feedback: r.Feedback, Summary: r.Summary}, nil
}
