package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/stimulus"
	"github.com/abhisek/focuslab/internal/trial"
	"github.com/abhisek/focuslab/internal/ui/layout"
	"github.com/abhisek/focuslab/internal/ui/theme"
)

const (
	cellWidth  = 12
	cardWidth  = 13
	cardsInRow = 4
)

var (
	dim     = lipgloss.NewStyle().Foreground(theme.TextDim)
	body    = lipgloss.NewStyle().Foreground(theme.Text)
	target  = lipgloss.NewStyle().Foreground(theme.Target).Bold(true)
	cursorS = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Highlight).Bold(true)
)

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.Error).
			Render("Could not start the game\n\n" + s.errMsg)
	}
	if s.engine == nil {
		msg := "Opening session..."
		if s.leaving {
			msg = "Leaving..."
		}
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render(msg)
	}

	var b strings.Builder
	b.WriteString(s.statusLine(width))
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	var main string
	switch {
	case s.confirmQuit:
		main = theme.Title.Render("End this session?") + "\n\n" +
			body.Render(fmt.Sprintf("%d trials will be saved.", s.snap.TrialCount))
	case s.ending || s.snap.Phase == trial.PhaseSaving:
		main = dim.Render("Saving session...")
	default:
		main = s.renderPhase()
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, main))

	if s.saveFailed {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Incorrect.Render("Saving failed. Press Esc then Y to try again.")))
	}
	return b.String()
}

func (s *Screen) statusLine(width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Level %d/%d", s.snap.Level, difficulty.MaxLevel))
	right := dim.Render(fmt.Sprintf("Trial %d   Streak %s   ",
		s.snap.TrialCount, streakText(s.snap.Streaks)))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func streakText(st difficulty.Streaks) string {
	switch {
	case st.Correct > 0:
		return theme.Correct.Render(fmt.Sprintf("+%d", st.Correct))
	case st.Incorrect > 0:
		return theme.Incorrect.Render(fmt.Sprintf("-%d", st.Incorrect))
	}
	return "0"
}

func (s *Screen) renderPhase() string {
	snap := s.snap
	switch snap.Phase {
	case trial.PhaseIdle, trial.PhaseOpening:
		return dim.Render("Opening session...")

	case trial.PhaseCountdown:
		left := s.deps.Config.CountdownDuration
		if left <= 0 {
			left = trial.DefaultCountdownDuration
		}
		left -= time.Since(snap.PhaseStartedAt)
		secs := max(int(math.Ceil(left.Seconds())), 1)
		return theme.Title.Render(instructions(s.kind)) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("Starting in %d", secs))

	case trial.PhaseStimulus, trial.PhaseOcclusion:
		if s.kind == difficulty.IconSwap {
			if snap.Phase == trial.PhaseOcclusion {
				return s.renderCards(blankCards(len(snap.Stimulus.OriginalIcons)), -1, -1) + "\n\n" + dim.Render("...")
			}
			return s.renderCards(snap.Stimulus.OriginalIcons, -1, -1) + "\n\n" + dim.Render("Memorize the cards")
		}
		return s.renderRing(ringShow) + "\n\n" + dim.Render("Watch closely")

	case trial.PhaseResponseCentral:
		if s.kind == difficulty.IconSwap {
			return s.renderCards(snap.Stimulus.ModifiedIcons, s.cursor, -1) + "\n\n" +
				body.Render("Which card changed?")
		}
		return s.renderRing(ringHidden) + "\n\n" + body.Render(centralQuestion(s.kind)) + "\n\n" + s.choice.View()

	case trial.PhaseResponsePeripheral:
		return s.renderRing(ringNumbered) + "\n\n" + body.Render("Where was the target?")

	case trial.PhaseFeedback:
		return s.renderFeedback()

	case trial.PhaseContinuePrompt:
		return theme.Title.Render(fmt.Sprintf("%d trials done", snap.TrialCount)) + "\n\n" + s.choice.View()
	}
	return ""
}

func (s *Screen) renderFeedback() string {
	t := s.snap.LastTrial
	if t == nil {
		return ""
	}
	var verdict string
	switch {
	case t.TimedOut:
		verdict = theme.Incorrect.Render("Too slow")
	case t.Correct:
		verdict = theme.Correct.Render("Correct")
	default:
		verdict = theme.Incorrect.Render("Not quite")
	}

	var detail string
	if s.kind == difficulty.IconSwap {
		detail = s.renderCards(s.snap.Stimulus.ModifiedIcons, t.PeripheralAnswer, t.PeripheralExpected)
	} else {
		detail = s.renderRing(ringReveal)
		if !t.CentralCorrect {
			detail += "\n\n" + dim.Render(fmt.Sprintf("It was %s", t.CentralExpected))
		}
	}
	return verdict + "\n\n" + detail + "\n\n" +
		dim.Render(fmt.Sprintf("%d ms", t.ResponseTime.Milliseconds()))
}

type ringMode int

const (
	ringShow ringMode = iota
	ringHidden
	ringNumbered
	ringReveal
)

// ringCells maps each ring slot onto a 3x3 grid, using the same clockwise
// from-the-top geometry as the stimulus layout.
var ringCells = func() [stimulus.RingSlots][2]int {
	var out [stimulus.RingSlots][2]int
	for i, p := range stimulus.RingPositions(stimulus.RingSlots, 0.5, 2) {
		out[i] = [2]int{int(math.Round(p.Y)), int(math.Round(p.X))}
	}
	return out
}()

func (s *Screen) renderRing(mode ringMode) string {
	st := s.snap.Stimulus
	var grid [3][3]string
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = layout.PadRight("", cellWidth)
		}
	}

	distractors := make(map[int]bool, len(st.DistractorPositions))
	for _, p := range st.DistractorPositions {
		distractors[p] = true
	}

	for slot, rc := range ringCells {
		var cell string
		switch mode {
		case ringShow:
			switch {
			case slot == st.PeripheralPosition:
				cell = target.Render(center("◆", cellWidth))
			case distractors[slot]:
				cell = dim.Render(center("◇", cellWidth))
			default:
				cell = dim.Render(center("·", cellWidth))
			}
		case ringHidden:
			cell = dim.Render(center("·", cellWidth))
		case ringNumbered:
			label := center(fmt.Sprintf("%d", slot+1), cellWidth)
			if slot == s.cursor {
				cell = cursorS.Render(label)
			} else {
				cell = body.Render(label)
			}
		case ringReveal:
			label := center("·", cellWidth)
			style := dim
			if last := s.snap.LastTrial; last != nil {
				switch slot {
				case last.PeripheralExpected:
					label, style = center("◆", cellWidth), theme.Correct
				case last.PeripheralAnswer:
					label, style = center("✗", cellWidth), theme.Incorrect
				}
			}
			cell = style.Render(label)
		}
		grid[rc[0]][rc[1]] = cell
	}

	switch mode {
	case ringShow:
		grid[1][1] = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render(center(centralGlyph(st), cellWidth))
	default:
		grid[1][1] = dim.Render(center("?", cellWidth))
	}

	rows := make([]string, 0, 5)
	for r := range grid {
		rows = append(rows, strings.Join(grid[r][:], ""))
		if r < 2 {
			rows = append(rows, "")
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(strings.Join(rows, "\n"))
}

func (s *Screen) renderCards(icons []string, cursor, reveal int) string {
	cards := make([]string, 0, len(icons))
	for i, icon := range icons {
		label := center(fmt.Sprintf("%d %s", i+1, icon), cardWidth-2)
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Foreground(theme.Text)
		switch {
		case i == reveal:
			style = style.BorderForeground(theme.Success).Foreground(theme.Success)
		case reveal >= 0 && i == cursor:
			style = style.BorderForeground(theme.Error).Foreground(theme.Error)
		case i == cursor:
			style = style.BorderForeground(theme.Highlight).Foreground(theme.Highlight).Bold(true)
		}
		cards = append(cards, style.Render(label))
	}

	var rows []string
	for start := 0; start < len(cards); start += cardsInRow {
		end := min(start+cardsInRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func blankCards(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "░░░░"
	}
	return out
}

// center pads s to w cells with s in the middle.
func center(s string, w int) string {
	s = layout.Truncate(s, w)
	pad := w - lipgloss.Width(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func centralGlyph(st stimulus.Stimulus) string {
	if st.Kind == difficulty.DoubleDecision {
		arrow := "→"
		if st.Direction == "left" {
			arrow = "←"
		}
		return st.CentralType + " " + arrow
	}
	return st.CentralType
}

func centralQuestion(kind difficulty.GameKind) string {
	if kind == difficulty.DoubleDecision {
		return "Which way was it going?"
	}
	return "Which vehicle was in the center?"
}

func instructions(kind difficulty.GameKind) string {
	switch kind {
	case difficulty.DividedAttention:
		return "Note the vehicle in the center and where the target flashes"
	case difficulty.DoubleDecision:
		return "Note the direction in the center and where the target flashes"
	case difficulty.IconSwap:
		return "Memorize the cards, then find the one that changed"
	}
	return kind.DisplayName()
}
