// Package tui is the terminal chat client built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medibot/internal/domain/entities"
	"medibot/internal/domain/usecases"
)

// Model is the Bubble Tea model for the chat TUI. It owns one conversation
// session for its lifetime; quitting discards the history.
type Model struct {
	dialogue    *usecases.DialogueController
	session     *entities.ConversationSession
	input       textinput.Model
	viewport    viewport.Model
	transcript  []string
	lastSources []entities.RetrievedPassage
	showSources bool
	status      string
	ready       bool
}

// New creates a chat model backed by the given dialogue controller.
func New(dialogue *usecases.DialogueController) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a medical question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		dialogue: dialogue,
		session:  entities.NewSession(),
		input:    ti,
		viewport: vp,
		status:   "Ready. Ctrl+S toggles sources, Ctrl+C quits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.input.SetValue("")
				m.submit(q)
				m.viewport.SetContent(m.renderTranscript())
				m.viewport.GotoBottom()
				return m, nil
			}
		case "ctrl+s":
			m.showSources = !m.showSources
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one chat turn synchronously. A failed turn leaves the question
// visible in the transcript with the error in the status line; the next input
// is accepted normally.
func (m *Model) submit(question string) {
	m.transcript = append(m.transcript, userStyle.Render("You: ")+question)

	resp, err := m.dialogue.Respond(context.Background(), m.session, question)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.lastSources = nil
		return
	}

	m.transcript = append(m.transcript, assistantStyle.Render("Medibot: ")+resp.Answer)
	m.lastSources = resp.Sources
	if len(resp.Sources) > 0 {
		m.status = fmt.Sprintf("Answered with %d sources. Ctrl+S to toggle them.", len(resp.Sources))
	} else {
		m.status = "Answered."
	}
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("🩺 Medibot")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet. Ask away."
	}
	out := strings.Join(m.transcript, "\n\n")
	if m.showSources && len(m.lastSources) > 0 {
		var sb strings.Builder
		sb.WriteString(out)
		sb.WriteString("\n\n")
		sb.WriteString(sourceHeaderStyle.Render("Sources for the last answer:"))
		for _, s := range m.lastSources {
			sb.WriteString(fmt.Sprintf("\n%d. %s", s.Rank, s.Source))
			if s.PageLabel != "" {
				sb.WriteString(" (page " + s.PageLabel + ")")
			}
			sb.WriteString("\n   " + sourceStyle.Render(s.Excerpt))
		}
		out = sb.String()
	}
	return out
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sourceHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
