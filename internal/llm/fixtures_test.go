package llm

// Fixtures shaped like the requests the language games send. The real
// schemas live in the language package, which imports this one.

func questionsSchema() *Schema {
	return &Schema{
		Name:        "comprehension-questions",
		Description: "Multiple-choice questions about a passage",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
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
							"correctIndex":    map[string]any{"type": "integer"},
							"supportingQuote": map[string]any{"type": "string"},
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
}

func summaryGradeSchema() *Schema {
	score := func() map[string]any {
		return map[string]any{"type": "number", "minimum": 0, "maximum": 10}
	}
	return &Schema{
		Name:        "summary-grade",
		Description: "Scores and feedback for a written summary",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"accuracyScore":   score(),
				"vocabularyScore": score(),
				"grammarScore":    score(),
				"overallScore":    score(),
				"feedback":        map[string]any{"type": "string"},
				"sentenceIssues": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"sentence":   map[string]any{"type": "string"},
							"issueType":  map[string]any{"type": "string", "enum": []any{"grammar", "vocabulary", "accuracy"}},
							"suggestion": map[string]any{"type": "string"},
						},
						"required":             []any{"sentence", "issueType", "suggestion"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"accuracyScore", "vocabularyScore", "grammarScore", "overallScore", "feedback", "sentenceIssues"},
			"additionalProperties": false,
		},
	}
}

const questionsJSON = `{"questions":[{"question":"Where were the organisms found?","options":["In a desert","In a deep ocean trench","On a glacier","In a city park"],"correctIndex":1,"supportingQuote":"living at extreme depths"}]}`

const summaryGradeJSON = `{"accuracyScore":8,"vocabularyScore":6,"grammarScore":7,"overallScore":7,"feedback":"Clear, but the verb tenses drift.","sentenceIssues":[{"sentence":"Scientists finds new species.","issueType":"grammar","suggestion":"Scientists find new species."}]}`

func questionsRequest() Request {
	return Request{
		System:    "You write reading comprehension questions for language learners.",
		Messages:  []Message{{Role: RoleUser, Content: "Language: English\nLevel: B1\nWrite 1 question about the passage."}},
		Schema:    questionsSchema(),
		MaxTokens: 2048,
	}
}

func summaryGradeRequest() Request {
	return Request{
		System:    "You grade summaries written by language learners.",
		Messages:  []Message{{Role: RoleUser, Content: "Word limit: 10-20\nSummary: Scientists finds new species."}},
		Schema:    summaryGradeSchema(),
		MaxTokens: 1536,
	}
}
