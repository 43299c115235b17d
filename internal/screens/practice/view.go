package practice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
	"github.com/abhisek/focuslab/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var body string
	switch s.state {
	case stateLoading:
		body = theme.Hint.Render("Preparing exercises…")
	case stateLoadFailed:
		body = lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load exercises: "+s.errMsg) +
			"\n\n" + theme.Hint.Render("Press R to retry.")
	case stateReading:
		body = s.readingView(cw)
	case stateAnswering:
		body = s.answeringView(cw)
	case stateGrading:
		body = theme.Hint.Render(fmt.Sprintf("Grading %d answers…", len(s.material.Exercises)))
	case stateResults:
		body = s.resultsView(cw)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *Screen) passage(cw int) string {
	var b strings.Builder
	if s.material.Title != "" {
		b.WriteString(theme.Title.Render(s.material.Title))
		b.WriteString("\n\n")
	}
	b.WriteString(components.Panel(lipgloss.NewStyle().Width(cw-4).Render(s.material.Text()), cw))
	return b.String()
}

func (s *Screen) readingView(cw int) string {
	left := max(s.readUntil.Sub(s.deps.Clock.Now()), 0).Round(time.Second)
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · read carefully, the text is hidden afterwards",
		s.deps.Language.Name(), s.sess.Level().Label())))
	b.WriteString("\n\n")
	b.WriteString(s.passage(cw))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(formatClock(left) + " left"))
	s.writeFooter(&b)
	return b.String()
}

func formatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s *Screen) answeringView(cw int) string {
	ex := s.item()
	n := len(s.material.Exercises)
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s %d of %d",
		s.deps.Language.Name(), s.sess.Level().Label(), itemNoun(ex.Kind), s.current+1, n)))
	b.WriteString("\n\n")

	switch ex.Kind {
	case language.ItemChoice:
		b.WriteString(components.Panel(theme.Body.Render(ex.Original), cw))
		b.WriteString("\n\n")
		b.WriteString(s.choice.ListView(cw - 4))
	case language.ItemSummary:
		if !s.material.ReadFirst {
			b.WriteString(s.passage(cw))
			b.WriteString("\n\n")
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(
			fmt.Sprintf("%s (%d-%d words)", ex.Original, ex.MinWords, ex.MaxWords)))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
		b.WriteString("\n")
		b.WriteString(wordCountLine(language.WordCount(s.input.Value()), ex.MinWords, ex.MaxWords))
	default:
		b.WriteString(components.Panel(theme.Body.Render(ex.Original), cw))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(ex.Task))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	}

	answered := 0
	for _, a := range s.sess.Answers() {
		if a != "" {
			answered++
		}
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d answered", answered, n)))
	s.writeFooter(&b)
	return b.String()
}

func itemNoun(k language.ItemKind) string {
	switch k {
	case language.ItemChoice:
		return "question"
	case language.ItemSummary:
		return "summary"
	}
	return "sentence"
}

func wordCountLine(words, lo, hi int) string {
	line := fmt.Sprintf("%d words", words)
	if words < lo || words > hi {
		return lipgloss.NewStyle().Foreground(theme.Error).Render(line)
	}
	return theme.Correct.Render(line)
}

func (s *Screen) writeFooter(b *strings.Builder) {
	if s.confirmQuit {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("Quit without grading? (y/n)"))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}
}

func (s *Screen) resultsView(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Score %.1f / 10", s.eval.Overall)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d correct", s.eval.CorrectCount(), len(s.eval.Items))))
	b.WriteString("\n\n")

	answers := s.sess.Answers()
	for _, it := range s.eval.Items {
		mark := theme.Correct.Render("✓")
		if !it.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		answer := ""
		if it.Index < len(answers) {
			answer = s.answerText(it.Index, answers[it.Index])
		}
		if answer == "" {
			answer = "(blank)"
		}
		b.WriteString(fmt.Sprintf("%s %2d  %s\n", mark, it.Score, layout.Truncate(answer, cw-8)))
		if it.Correct {
			continue
		}
		if it.Kind == language.ItemChoice && it.Feedback != "" {
			b.WriteString(theme.Hint.Render("       "+layout.Truncate(it.Feedback, cw-7)) + "\n")
		}
		if it.Suggestion != "" {
			b.WriteString(theme.Hint.Render("       → "+layout.Truncate(it.Suggestion, cw-9)) + "\n")
		}
	}

	if sum := s.eval.Summary; sum != nil {
		b.WriteString("\n")
		b.WriteString(summaryView(sum, cw))
	}

	if s.eval.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(s.eval.Feedback))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if s.saveErr != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Not saved: " + s.saveErr.Error() + ". Press S to retry."))
	} else if p, ok := s.sess.Progress(); ok {
		b.WriteString(levelLine(p))
	}
	return b.String()
}

// answerText shows a picked option by its text.
func (s *Screen) answerText(i int, answer string) string {
	ex := s.material.Exercises[i]
	if ex.Kind != language.ItemChoice {
		return answer
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 0 && n < len(ex.Options) {
		return ex.Options[n]
	}
	return answer
}

func summaryView(sum *language.SummaryScore, cw int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Summary · accuracy %.0f · vocabulary %.0f · grammar %.0f",
		sum.Accuracy, sum.Vocabulary, sum.Grammar)))
	b.WriteString("\n")
	for _, is := range sum.Issues {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("  %s: ", is.Type)))
		b.WriteString(layout.Truncate(is.Sentence, cw-16))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("       → "+layout.Truncate(is.Suggestion, cw-9)) + "\n")
	}
	return b.String()
}

func levelLine(p language.Progress) string {
	switch p.Result.Direction {
	case cefr.Up:
		return theme.Correct.Render(fmt.Sprintf("Level up! %s → %s", p.Previous.Label(), p.Result.Level.Label()))
	case cefr.Down:
		return lipgloss.NewStyle().Foreground(theme.Accent).Render(
			fmt.Sprintf("Level adjusted: %s → %s", p.Previous.Label(), p.Result.Level.Label()))
	}
	return theme.Subtitle.Render("Level " + p.Previous.Label())
}
