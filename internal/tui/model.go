// Package tui is a terminal front end that drives a quiz session locally.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// Options configures the terminal model.
type Options struct {
	Title   string
	NoColor bool
}

// Model renders one question at a time and forwards option keys to the
// session. It owns the session exclusively.
type Model struct {
	session *quiz.Session
	title   string
	current int
	notice  string
	width   int

	keys    keyMap
	help    help.Model
	noColor bool
}

// NewModel builds a model over a session that is already loaded.
func NewModel(session *quiz.Session, opts Options) Model {
	h := help.New()
	return Model{
		session: session,
		title:   opts.Title,
		keys:    defaultKeys(),
		help:    h,
		noColor: opts.NoColor,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		if m.current < m.session.Len()-1 {
			m.current++
		}
		m.notice = ""
	case key.Matches(msg, m.keys.Prev):
		if m.current > 0 {
			m.current--
		}
		m.notice = ""
	case key.Matches(msg, m.keys.Reset):
		if err := m.session.Reset(); err != nil {
			m.notice = err.Error()
		} else {
			m.current = 0
			m.notice = "Answers cleared"
		}
	default:
		for opt, binding := range m.keys.Options {
			if key.Matches(msg, binding) {
				return m.answer(opt), nil
			}
		}
	}
	return m, nil
}

func (m Model) answer(option int) Model {
	if _, err := m.session.Answer(m.current, option); err != nil {
		m.notice = err.Error()
		return m
	}
	m.notice = ""
	return m
}

// View renders the current question, its feedback and the running score.
func (m Model) View() string {
	parts := []string{renderTitle(m.title, m.noColor)}
	if m.session.Empty() {
		parts = append(parts, dim("No questions loaded.", m.noColor))
	} else {
		q, _ := m.session.Question(m.current)
		state, _ := m.session.State(m.current)
		parts = append(parts,
			renderProgress(m.current, m.session.Len(), m.noColor),
			renderQuestion(q, state, m.noColor),
		)
		if state.Locked && state.Selected != nil {
			parts = append(parts, renderFeedback(q, *state.Selected, m.noColor))
		}
	}
	parts = append(parts, renderStats(m.session.Stats(), m.noColor))
	if m.notice != "" {
		parts = append(parts, dim(m.notice, m.noColor))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}
