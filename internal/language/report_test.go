package language

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestReportEvaluation(t *testing.T) {
	r := &Report{
		Items: []ReportItem{
			{Index: 1, Score: 6},
			{Index: 0, Score: 9, Correct: boolPtr(true), Feedback: "good"},
			{Index: 2, Score: 5},
			{Index: 3, Score: 7, Correct: boolPtr(false)},
		},
		Overall:  6.75,
		Feedback: "solid",
	}
	eval, err := r.Evaluation(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCorrect := []bool{true, true, false, false}
	for i, it := range eval.Items {
		if it.Index != i {
			t.Errorf("item %d has index %d", i, it.Index)
		}
		if it.Correct != wantCorrect[i] {
			t.Errorf("item %d correct = %v, want %v", i, it.Correct, wantCorrect[i])
		}
	}
	if eval.Items[0].Feedback != "good" {
		t.Errorf("items not ordered by index: %+v", eval.Items)
	}
	if eval.CorrectCount() != 2 || eval.Accuracy() != 0.5 {
		t.Errorf("correct = %d, accuracy = %v", eval.CorrectCount(), eval.Accuracy())
	}
}

func TestReportEvaluationRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
	}{
		{"nil", nil},
		{"too few", &Report{Items: []ReportItem{{Index: 0, Score: 5}}, Overall: 5}},
		{"score too high", &Report{Items: []ReportItem{{Index: 0, Score: 11}, {Index: 1, Score: 5}}, Overall: 5}},
		{"score too low", &Report{Items: []ReportItem{{Index: 0, Score: 0}, {Index: 1, Score: 5}}, Overall: 5}},
		{"fractional score", &Report{Items: []ReportItem{{Index: 0, Score: 6.5}, {Index: 1, Score: 5}}, Overall: 5}},
		{"duplicate index", &Report{Items: []ReportItem{{Index: 0, Score: 5}, {Index: 0, Score: 5}}, Overall: 5}},
		{"index out of range", &Report{Items: []ReportItem{{Index: 0, Score: 5}, {Index: 2, Score: 5}}, Overall: 5}},
		{"overall out of range", &Report{Items: []ReportItem{{Index: 0, Score: 5}, {Index: 1, Score: 5}}, Overall: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.report.Evaluation(2)
			var shape *ShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("expected *ShapeError, got %v", err)
			}
		})
	}
}
