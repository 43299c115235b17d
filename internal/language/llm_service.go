package language

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/llm"
)

// ask sends req tagged with purpose and decodes the structured answer into
// out.
func ask(ctx context.Context, p llm.Provider, purpose string, req llm.Request, out any) error {
	resp, err := p.Generate(llm.WithPurpose(ctx, purpose), req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("parse %s response: %w", purpose, err)
	}
	return nil
}

// RewriteGenerator produces tense rewrite batteries using an LLM provider.
type RewriteGenerator struct {
	provider llm.Provider
	config   Config
}

// NewRewriteGenerator creates a RewriteGenerator.
func NewRewriteGenerator(provider llm.Provider, cfg Config) *RewriteGenerator {
	return &RewriteGenerator{provider: provider, config: cfg}
}

type exercisesOutput struct {
	Exercises []exerciseOutput `json:"exercises"`
}

type exerciseOutput struct {
	Original           string `json:"original"`
	TaskDescription    string `json:"taskDescription"`
	TransformationType string `json:"transformationType"`
	ReferenceSolution  string `json:"referenceSolution"`
}

// Generate asks the model for a battery of config.Exercises sentences.
func (g *RewriteGenerator) Generate(ctx context.Context, lang Language, level cefr.Level) (*Material, error) {
	n := g.config.Exercises
	if n <= 0 {
		n = BatterySize
	}

	req := llm.Request{
		System: exerciseSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExerciseUserMessage(lang, level, n)},
		},
		Schema:      ExercisesSchema,
		MaxTokens:   g.config.GenMaxTokens,
		Temperature: g.config.GenTemperature,
	}

	var out exercisesOutput
	if err := ask(ctx, g.provider, llm.PurposeExerciseGen, req, &out); err != nil {
		return nil, fmt.Errorf("exercise generation failed: %w", err)
	}

	exercises := make([]Exercise, 0, len(out.Exercises))
	for _, e := range out.Exercises {
		if strings.TrimSpace(e.Original) == "" {
			continue
		}
		exercises = append(exercises, Exercise{
			Kind:           ItemRewrite,
			Original:       e.Original,
			Task:           e.TaskDescription,
			Transformation: Transformation(e.TransformationType),
			Reference:      e.ReferenceSolution,
		})
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise generation returned no usable sentences")
	}
	if len(exercises) > n {
		exercises = exercises[:n]
	}
	return &Material{Exercises: exercises}, nil
}

// SummaryGenerator produces a speed summary: one news paragraph that stays
// on screen while the learner summarizes it.
type SummaryGenerator struct {
	provider  llm.Provider
	headlines HeadlineSource
	config    Config
	pick      func(int) int
}

// NewSummaryGenerator creates a SummaryGenerator. A nil headlines source
// uses the built-in headlines.
func NewSummaryGenerator(provider llm.Provider, headlines HeadlineSource, cfg Config) *SummaryGenerator {
	return &SummaryGenerator{provider: provider, headlines: headlines, config: cfg, pick: rand.IntN}
}

type paragraphOutput struct {
	Title     string `json:"title"`
	Paragraph string `json:"paragraph"`
}

// Generate writes a paragraph on a random headline.
func (g *SummaryGenerator) Generate(ctx context.Context, lang Language, level cefr.Level) (*Material, error) {
	h, err := pickHeadline(ctx, g.headlines, lang, g.pick)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System: readingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildParagraphUserMessage(lang, level, h)},
		},
		Schema:      ParagraphSchema,
		MaxTokens:   g.config.ParagraphMaxTokens,
		Temperature: g.config.GenTemperature,
	}
	var out paragraphOutput
	if err := ask(ctx, g.provider, llm.PurposeParagraphGen, req, &out); err != nil {
		return nil, fmt.Errorf("paragraph generation failed: %w", err)
	}
	if strings.TrimSpace(out.Paragraph) == "" {
		return nil, fmt.Errorf("paragraph generation returned no text")
	}

	title := out.Title
	if title == "" {
		title = h.Title
	}
	return &Material{
		Title:   title,
		Passage: []string{strings.TrimSpace(out.Paragraph)},
		Exercises: []Exercise{{
			Kind:     ItemSummary,
			Original: "Summarize the paragraph.",
			MinWords: SpeedSummaryMinWords,
			MaxWords: SpeedSummaryMaxWords,
		}},
	}, nil
}

// ComprehensionGenerator produces a reading comprehension session: an
// article read against the clock, multiple-choice questions and a summary
// written with the article hidden.
type ComprehensionGenerator struct {
	provider  llm.Provider
	headlines HeadlineSource
	config    Config
	pick      func(int) int
}

// NewComprehensionGenerator creates a ComprehensionGenerator. A nil
// headlines source uses the built-in headlines.
func NewComprehensionGenerator(provider llm.Provider, headlines HeadlineSource, cfg Config) *ComprehensionGenerator {
	return &ComprehensionGenerator{provider: provider, headlines: headlines, config: cfg, pick: rand.IntN}
}

type articleOutput struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

type questionsOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"correctIndex"`
	SupportingQuote string   `json:"supportingQuote"`
}

// Generate writes an article on a random headline, then questions on it.
func (g *ComprehensionGenerator) Generate(ctx context.Context, lang Language, level cefr.Level) (*Material, error) {
	h, err := pickHeadline(ctx, g.headlines, lang, g.pick)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System: readingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildArticleUserMessage(lang, level, h)},
		},
		Schema:      ArticleSchema,
		MaxTokens:   g.config.ArticleMaxTokens,
		Temperature: g.config.GenTemperature,
	}
	var art articleOutput
	if err := ask(ctx, g.provider, llm.PurposeArticleGen, req, &art); err != nil {
		return nil, fmt.Errorf("article generation failed: %w", err)
	}

	m := &Material{Title: art.Title, ReadFirst: true}
	if m.Title == "" {
		m.Title = h.Title
	}
	for _, p := range art.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			m.Passage = append(m.Passage, p)
		}
	}
	if len(m.Passage) == 0 {
		return nil, fmt.Errorf("article generation returned no text")
	}

	n := g.config.Questions
	if n <= 0 {
		n = BatterySize
	}
	req = llm.Request{
		System: readingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionsUserMessage(lang, m, n)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   g.config.QuestionsMaxTokens,
		Temperature: g.config.GenTemperature,
	}
	var qs questionsOutput
	if err := ask(ctx, g.provider, llm.PurposeQuestionGen, req, &qs); err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	for _, q := range qs.Questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 ||
			q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		m.Exercises = append(m.Exercises, Exercise{
			Kind:          ItemChoice,
			Original:      q.Question,
			Options:       q.Options,
			CorrectOption: q.CorrectIndex,
			Quote:         q.SupportingQuote,
		})
		if len(m.Exercises) == n {
			break
		}
	}
	if len(m.Exercises) == 0 {
		return nil, fmt.Errorf("question generation returned no usable questions")
	}
	m.Exercises = append(m.Exercises, Exercise{
		Kind:     ItemSummary,
		Original: "Summarize the article from memory.",
		MinWords: ComprehensionMinWords,
		MaxWords: ComprehensionMaxWords,
	})
	return m, nil
}

// LLMGrader implements Grader using an LLM provider. Choice items are
// scored locally; rewrites are graded in one request and each summary in
// its own.
type LLMGrader struct {
	provider llm.Provider
	config   Config
}

// NewLLMGrader creates an LLMGrader.
func NewLLMGrader(provider llm.Provider, cfg Config) *LLMGrader {
	return &LLMGrader{provider: provider, config: cfg}
}

// Grade scores every submission. The report's overall score is the mean
// of the rewrite, choice and summary components present.
func (g *LLMGrader) Grade(ctx context.Context, lang Language, level cefr.Level, m *Material, subs []Submission) (*Report, error) {
	report := &Report{Items: make([]ReportItem, 0, len(subs))}
	var (
		rewrites        []int
		overalls        []float64
		feedback        []string
		choices, rights int
	)

	for i, s := range subs {
		switch s.Kind {
		case ItemChoice:
			it := gradeChoice(i, s)
			report.Items = append(report.Items, it)
			choices++
			if *it.Correct {
				rights++
			}
		case ItemSummary:
			sc, err := g.gradeSummary(ctx, lang, level, m, s)
			if err != nil {
				return nil, err
			}
			passed := sc.Passed()
			report.Items = append(report.Items, ReportItem{
				Index:    i,
				Kind:     ItemSummary,
				Score:    math.Round(clampScore(sc.Overall)),
				Correct:  &passed,
				Feedback: sc.Feedback,
			})
			report.Summary = sc
			overalls = append(overalls, sc.Overall)
			feedback = append(feedback, sc.Feedback)
		default:
			rewrites = append(rewrites, i)
		}
	}

	if len(rewrites) > 0 {
		part := make([]Submission, len(rewrites))
		for j, i := range rewrites {
			part[j] = subs[i]
		}
		r, err := g.gradeRewrites(ctx, lang, level, part)
		if err != nil {
			return nil, err
		}
		for _, it := range r.Items {
			if it.Index >= 0 && it.Index < len(rewrites) {
				it.Index = rewrites[it.Index]
			} else {
				it.Index = -1
			}
			report.Items = append(report.Items, it)
		}
		overalls = append(overalls, r.Overall)
		feedback = append(feedback, r.Feedback)
	}

	if choices > 0 {
		acc := float64(rights) / float64(choices)
		overalls = append(overalls, max(MinScore, MaxScore*acc))
		feedback = append([]string{fmt.Sprintf("%d of %d questions answered correctly.", rights, choices)}, feedback...)
	}

	for _, o := range overalls {
		report.Overall += o
	}
	if len(overalls) > 0 {
		report.Overall /= float64(len(overalls))
	}
	report.Feedback = strings.Join(feedback, " ")
	return report, nil
}

func (g *LLMGrader) gradeRewrites(ctx context.Context, lang Language, level cefr.Level, subs []Submission) (*Report, error) {
	req := llm.Request{
		System: gradeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGradeUserMessage(lang, level, subs)},
		},
		Schema:      GradeSchema,
		MaxTokens:   g.config.GradeMaxTokens,
		Temperature: g.config.GradeTemperature,
	}
	var report Report
	if err := ask(ctx, g.provider, llm.PurposeGrade, req, &report); err != nil {
		return nil, fmt.Errorf("grading failed: %w", err)
	}
	return &report, nil
}

func (g *LLMGrader) gradeSummary(ctx context.Context, lang Language, level cefr.Level, m *Material, sub Submission) (*SummaryScore, error) {
	if m == nil {
		m = &Material{}
	}
	req := llm.Request{
		System: summaryGradeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryGradeUserMessage(lang, level, m, sub)},
		},
		Schema:      SummaryGradeSchema,
		MaxTokens:   g.config.SummaryGradeMaxTokens,
		Temperature: g.config.GradeTemperature,
	}
	var sc SummaryScore
	if err := ask(ctx, g.provider, llm.PurposeSummaryGrade, req, &sc); err != nil {
		return nil, fmt.Errorf("summary grading failed: %w", err)
	}
	return &sc, nil
}

func gradeChoice(i int, s Submission) ReportItem {
	picked, err := strconv.Atoi(strings.TrimSpace(s.Answer))
	correct := err == nil && picked == s.CorrectOption
	it := ReportItem{
		Index:      i,
		Kind:       ItemChoice,
		Score:      MinScore,
		Correct:    &correct,
		Suggestion: s.Quote,
	}
	switch {
	case correct:
		it.Score = MaxScore
		it.Feedback = "Correct."
	case s.CorrectOption >= 0 && s.CorrectOption < len(s.Options):
		it.Feedback = "The answer is: " + s.Options[s.CorrectOption]
	}
	return it
}

func clampScore(v float64) float64 {
	return min(max(v, MinScore), MaxScore)
}
