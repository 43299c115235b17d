package language

import (
	"fmt"
	"strings"

	"github.com/abhisek/focuslab/internal/cefr"
)

const exerciseSystemPrompt = `You write sentence transformation drills for adult language learners. Sentences cover varied everyday topics such as news, culture, science, travel, food and technology.`

func buildExerciseUserMessage(lang Language, level cefr.Level, n int) string {
	kinds := TransformationsFor(level.Tier)
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "CEFR level: %s\n", level.Label())
	fmt.Fprintf(&b, "Exercises: %d\n", n)
	fmt.Fprintf(&b, "Allowed transformations: %s\n", strings.Join(names, ", "))

	b.WriteString(`
Instructions:
1. Each original sentence is 1-2 lines, about 15-20 words, with complexity matched to the level.
2. Use a diverse mix of transformations. Do not use the same one more than twice.
3. Write the original so the transformation is natural and meaningful.
4. The task description is a short instruction written in the target language, e.g. "Rewrite in the future tense".
5. Include a reference solution showing the correct transformation.`)

	return b.String()
}

const gradeSystemPrompt = `You grade sentence transformation exercises for adult language learners. Be fair and specific.`

func buildGradeUserMessage(lang Language, level cefr.Level, subs []Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "Expected CEFR level: %s\n\n", level.Label())

	for i, s := range subs {
		fmt.Fprintf(&b, "Exercise %d:\n", i)
		fmt.Fprintf(&b, "Original: %q\n", s.Original)
		fmt.Fprintf(&b, "Task: %s (%s)\n", s.Task, s.Transformation)
		fmt.Fprintf(&b, "Reference solution: %q\n", s.Reference)
		fmt.Fprintf(&b, "Learner's rewrite: %q\n\n", s.Answer)
	}

	fmt.Fprintf(&b, `Score each rewrite from 1 to 10:
- 9-10: perfect or near-perfect transformation with correct grammar
- 7-8: correct transformation with minor issues
- 5-6: transformation attempted with notable errors
- 3-4: major errors, incorrect or incomplete
- 1-2: does not address the task

Judge whether the transformation was applied, whether the grammar is correct and whether the meaning is preserved. Reward vocabulary or structures above the expected %s level.

Use 0-based indexes. Mark an item correct when its score is 6 or more. The overall score is the average of the sentence scores.`, level.Label())

	return b.String()
}

const readingSystemPrompt = `You write short news texts for adult language learners. Texts are factual, self-contained and understandable without prior knowledge.`

func writeHeadline(b *strings.Builder, h Headline) {
	fmt.Fprintf(b, "Headline: %q\n", h.Title)
	if h.Description != "" {
		fmt.Fprintf(b, "Context: %s\n", h.Description)
	}
}

func buildParagraphUserMessage(lang Language, level cefr.Level, h Headline) string {
	var b strings.Builder
	writeHeadline(&b, h)
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "CEFR level: %s\n", level.Tier)
	b.WriteString(`
Write a single news paragraph based on the headline.
- Exactly one paragraph, 80-120 words.
- Dense and informative: pack in the key facts.
- Adjust vocabulary and sentence complexity to the level.
- Give the paragraph a short title.`)
	return b.String()
}

func buildArticleUserMessage(lang Language, level cefr.Level, h Headline) string {
	var b strings.Builder
	writeHeadline(&b, h)
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "CEFR level: %s\n", level.Tier)
	b.WriteString(`
Write a news article based on the headline.
- Exactly 3 paragraphs, about 350 words in total.
- Factual and informative tone.
- Adjust vocabulary and sentence complexity to the level.`)
	return b.String()
}

func buildQuestionsUserMessage(lang Language, m *Material, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Article title: %s\n\n%s\n\n", m.Title, m.Text())
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "Questions: %d\n", n)
	b.WriteString(`
Write multiple-choice questions on the article.
- Each question has exactly 4 options and one correct option, given by its 0-based index.
- Every answer must be derivable from the text. Test comprehension, not trivia.
- Mix detail questions with inference questions.
- Include a short exact quote from the article (1-2 sentences) supporting the correct answer.`)
	return b.String()
}

const summaryGradeSystemPrompt = `You grade summaries written by adult language learners. Flag only genuine errors.`

func buildSummaryGradeUserMessage(lang Language, level cefr.Level, m *Material, sub Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", lang.Name())
	fmt.Fprintf(&b, "Expected CEFR level: %s\n", level.Tier)
	fmt.Fprintf(&b, "Word limit: %d-%d\n\n", sub.MinWords, sub.MaxWords)
	fmt.Fprintf(&b, "Text (%s):\n%s\n\n", m.Title, m.Text())
	fmt.Fprintf(&b, "Learner's summary: %q\n\n", sub.Answer)

	fmt.Fprintf(&b, `Score the summary from 1 to 10 on each criterion:
- accuracy: does it capture the main idea? It is limited to %d-%d words, so do not penalize omitted details such as names, figures or secondary points. A summary conveying the core message scores 8-10.
- vocabulary: reward words above the expected %s level used correctly. Lower the score only for vocabulary well below the level or used incorrectly.
- grammar: reward correct complex structures. Flag only actual errors such as wrong tense, agreement or missing articles.
- overall: overall quality, weighing main-idea capture and language sophistication.

List each sentence with a genuine error as an issue of type grammar, vocabulary or accuracy, with a one-sentence explanation and the corrected sentence. Do not list advanced vocabulary, correct advanced grammar or details left out for length.`,
		sub.MinWords, sub.MaxWords, level.Tier)
	return b.String()
}
