package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
)

// Asker is the TUI-facing subset of the QA service.
type Asker interface {
	Ask(ctx context.Context, c *corpus.Corpus, question string) (*qa.Answer, error)
}

type answerMsg struct {
	answer *qa.Answer
	err    error
}

// Model is the Bubble Tea model for asking questions about one document.
type Model struct {
	ctx      context.Context
	asker    Asker
	corpus   *corpus.Corpus
	input    textinput.Model
	viewport viewport.Model
	answer   *qa.Answer
	status   string
	busy     bool
	ready    bool
}

func New(ctx context.Context, asker Asker, c *corpus.Corpus) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the story and press Enter (or 'exit')"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		ctx:      ctx,
		asker:    asker,
		corpus:   c,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   fmt.Sprintf("Loaded %s (%d chunks).", c.Source().Document, c.Len()),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-ah)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			m.answer = nil
		} else {
			m.status = fmt.Sprintf("Answered from %d chunks.", len(msg.answer.Sources))
			m.answer = msg.answer
		}
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			q := strings.TrimSpace(m.input.Value())
			if strings.EqualFold(q, "exit") {
				return m, tea.Quit
			}
			if q == "" || m.busy {
				return m, nil
			}

			m.busy = true
			m.status = fmt.Sprintf("Thinking about %q...", q)
			m.input.SetValue("")
			return m, m.ask(q)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.asker.Ask(m.ctx, m.corpus, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Document QA")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)

	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render(m.answer.Question))
	b.WriteString("\n\n")
	b.WriteString(m.answer.Text)

	if len(m.answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceTitleStyle.Render("Sources"))
		for _, s := range m.answer.Sources {
			fmt.Fprintf(&b, "\n#%d  distance=%.3f\n%s", s.Position, s.Distance, sourceStyle.Render(s.Text))
		}
	}

	return b.String()
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true)
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceTitleStyle = lipgloss.NewStyle().Underline(true)
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
