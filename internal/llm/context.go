package llm

import "context"

type contextKey string

// Purpose labels recorded with each request.
const (
	PurposeExerciseGen  = "exercise-gen"
	PurposeGrade        = "grade"
	PurposeParagraphGen = "paragraph-gen"
	PurposeArticleGen   = "article-gen"
	PurposeQuestionGen  = "question-gen"
	PurposeSummaryGrade = "summary-grade"
)

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
