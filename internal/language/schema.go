package language

import "github.com/abhisek/focuslab/internal/llm"

func transformationEnum() []any {
	out := make([]any, len(allTransformations))
	for i, t := range allTransformations {
		out[i] = string(t)
	}
	return out
}

// ExercisesSchema defines the JSON schema for a generated battery.
var ExercisesSchema = &llm.Schema{
	Name:        "rewrite-exercises",
	Description: "A battery of sentence transformation exercises",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exercises": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"original": map[string]any{
							"type":        "string",
							"description": "The sentence to transform, 15-20 words",
						},
						"taskDescription": map[string]any{
							"type":        "string",
							"description": "Short instruction in the target language",
						},
						"transformationType": map[string]any{
							"type": "string",
							"enum": transformationEnum(),
						},
						"referenceSolution": map[string]any{
							"type":        "string",
							"description": "A correct transformation of the original",
						},
					},
					"required":             []any{"original", "taskDescription", "transformationType", "referenceSolution"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"exercises"},
		"additionalProperties": false,
	},
}

// GradeSchema defines the JSON schema for a graded battery.
var GradeSchema = &llm.Schema{
	Name:        "rewrite-grades",
	Description: "Scores and feedback for a battery of sentence rewrites",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentenceScores": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index": map[string]any{
							"type":        "integer",
							"description": "0-based exercise number",
						},
						"score": map[string]any{
							"type":        "integer",
							"description": "1-10",
						},
						"correct": map[string]any{
							"type":        "boolean",
							"description": "True if score >= 6",
						},
						"feedback": map[string]any{
							"type":        "string",
							"description": "One sentence on what is right or wrong",
						},
						"suggestion": map[string]any{
							"type":        "string",
							"description": "The best corrected version",
						},
					},
					"required":             []any{"index", "score", "correct", "feedback", "suggestion"},
					"additionalProperties": false,
				},
			},
			"overallScore": map[string]any{
				"type":        "number",
				"description": "Weighted average of the sentence scores, 1-10",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Overall constructive feedback, 2-3 sentences",
			},
		},
		"required":             []any{"sentenceScores", "overallScore", "feedback"},
		"additionalProperties": false,
	},
}

// ParagraphSchema defines the JSON schema for a speed summary paragraph.
var ParagraphSchema = &llm.Schema{
	Name:        "news-paragraph",
	Description: "A single news paragraph with a title",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"paragraph": map[string]any{
				"type":        "string",
				"description": "One paragraph, 80-120 words",
			},
		},
		"required":             []any{"title", "paragraph"},
		"additionalProperties": false,
	},
}

// ArticleSchema defines the JSON schema for a comprehension article.
var ArticleSchema = &llm.Schema{
	Name:        "news-article",
	Description: "A three paragraph news article with a title",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"paragraphs": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
		},
		"required":             []any{"title", "paragraphs"},
		"additionalProperties": false,
	},
}

// QuestionsSchema defines the JSON schema for comprehension questions.
var QuestionsSchema = &llm.Schema{
	Name:        "comprehension-questions",
	Description: "Multiple-choice questions on an article",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 4,
							"maxItems": 4,
						},
						"correctIndex": map[string]any{
							"type":        "integer",
							"description": "0-based index of the correct option",
						},
						"supportingQuote": map[string]any{
							"type":        "string",
							"description": "Exact quote from the article supporting the answer",
						},
					},
					"required":             []any{"question", "options", "correctIndex", "supportingQuote"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

func scoreField(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc + ", 1-10"}
}

// SummaryGradeSchema defines the JSON schema for a graded summary.
var SummaryGradeSchema = &llm.Schema{
	Name:        "summary-grade",
	Description: "Scores, feedback and flagged sentences for a summary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"accuracyScore":   scoreField("Main idea capture"),
			"vocabularyScore": scoreField("Vocabulary range and use"),
			"grammarScore":    scoreField("Grammatical correctness"),
			"overallScore":    scoreField("Overall quality"),
			"feedback": map[string]any{
				"type":        "string",
				"description": "Constructive feedback, 2-3 sentences",
			},
			"sentenceIssues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sentence":    map[string]any{"type": "string"},
						"issueType":   map[string]any{"type": "string", "enum": []any{"grammar", "vocabulary", "accuracy"}},
						"explanation": map[string]any{"type": "string"},
						"suggestion":  map[string]any{"type": "string"},
					},
					"required":             []any{"sentence", "issueType", "explanation", "suggestion"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"accuracyScore", "vocabularyScore", "grammarScore", "overallScore", "feedback", "sentenceIssues"},
		"additionalProperties": false,
	},
}
