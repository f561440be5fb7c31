package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

var (
	colorTitle   = lipgloss.Color("33")
	colorDim     = lipgloss.Color("242")
	colorCorrect = lipgloss.Color("42")
	colorWrong   = lipgloss.Color("196")
)

// FeedbackText is the verdict shown once a question is answered.
func FeedbackText(q quiz.Question, selected int) string {
	if selected == q.CorrectIndex {
		return "Correct!"
	}
	return fmt.Sprintf("Wrong (Correct: %s. %s)", quiz.Letters[q.CorrectIndex], q.CorrectOption())
}

// StatsLine summarises the scorer output on one line.
func StatsLine(s quiz.Stats) string {
	return fmt.Sprintf("Answered %d/%d | Correct %d | Accuracy %d%%", s.Answered, s.Total, s.Correct, s.AccuracyPercent)
}

func renderTitle(title string, noColor bool) string {
	if title == "" {
		title = "MCQ Forge"
	}
	if noColor {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Render(title)
}

func renderProgress(current, total int, noColor bool) string {
	return dim(fmt.Sprintf("Question %d of %d", current+1, total), noColor)
}

func renderQuestion(q quiz.Question, state quiz.AnswerState, noColor bool) string {
	var b strings.Builder
	b.WriteString(q.Text)
	for i, opt := range q.Options {
		marker := " "
		if state.Locked && state.Selected != nil && *state.Selected == i {
			marker = ">"
		}
		line := fmt.Sprintf("\n%s %s. %s", marker, quiz.Letters[i], opt)
		if state.Locked && !noColor {
			switch {
			case i == q.CorrectIndex:
				line = lipgloss.NewStyle().Foreground(colorCorrect).Render(line)
			case state.Selected != nil && *state.Selected == i:
				line = lipgloss.NewStyle().Foreground(colorWrong).Render(line)
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

func renderFeedback(q quiz.Question, selected int, noColor bool) string {
	text := FeedbackText(q, selected)
	if noColor {
		return text
	}
	color := colorWrong
	if selected == q.CorrectIndex {
		color = colorCorrect
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}

func renderStats(s quiz.Stats, noColor bool) string {
	return dim(StatsLine(s), noColor)
}

func dim(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(colorDim).Render(text)
}
