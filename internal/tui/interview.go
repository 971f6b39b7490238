package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/britt/llpm/internal/config"
	"github.com/britt/llpm/internal/tool"
)

// maxInterviewWidth is the maximum width for the interview box.
const maxInterviewWidth = 90

type phase int

const (
	phaseLoading phase = iota
	phaseAsking
	phaseSectionDone
	phaseSessionDone
	phaseFailed
)

// Messages produced by tool-call commands.
type (
	questionMsg struct {
		sessionID string
		section   string
		question  *tool.QuestionPayload
	}
	sectionDoneMsg struct {
		sessionID string
		section   string
	}
	sessionDoneMsg struct{ savedTo string }
	failedMsg      struct{ err error }
	escResetMsg    struct{}
)

// InterviewModel walks the project's active session question by question,
// pausing with a closing message at the end of each section before the
// advance happens. Sections never advance behind the user's back.
type InterviewModel struct {
	handler *tool.Handler
	project config.ProjectConfig

	phase      phase
	sessionID  string
	section    string
	question   *tool.QuestionPayload
	input      textinput.Model
	err        error
	escPending bool // true when waiting for second Esc press
	width      int
	height     int
}

// RunInterview resumes the project's active session (or starts a fresh one)
// and runs the interview loop until the user quits or the session completes.
func RunInterview(handler *tool.Handler, project config.ProjectConfig) error {
	ti := textinput.New()
	ti.Placeholder = "Type your answer here..."
	ti.CharLimit = 500
	ti.Width = maxInterviewWidth - 8
	ti.Focus()

	m := InterviewModel{
		handler: handler,
		project: project,
		phase:   phaseLoading,
		input:   ti,
	}
	return run(m)
}

// Init resumes or starts a session.
func (m InterviewModel) Init() tea.Cmd {
	return m.resumeCmd()
}

// resumeCmd resolves the active session, starting a new one if none exists.
func (m InterviewModel) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		state := m.handler.State("")
		if state.Error != nil && state.Error.Code == tool.CodeNoActiveSession {
			started := m.handler.Start(m.project.Domain, m.project.Name)
			if started.Error != nil {
				return failedMsg{err: fmt.Errorf("%s", started.Error.Message)}
			}
			return questionMsg{
				sessionID: started.SessionID,
				section:   started.CurrentSection,
				question:  started.NextQuestion,
			}
		}
		if state.Error != nil {
			return failedMsg{err: fmt.Errorf("%s", state.Error.Message)}
		}
		if state.NextQuestion == nil {
			return sectionDoneMsg{sessionID: state.SessionID, section: state.CurrentSection}
		}
		return questionMsg{
			sessionID: state.SessionID,
			section:   state.CurrentSection,
			question:  state.NextQuestion,
		}
	}
}

// answerCmd records the typed answer and reports what comes next.
func (m InterviewModel) answerCmd(answer string) tea.Cmd {
	sessionID := m.sessionID
	questionID := m.question.ID
	section := m.section
	return func() tea.Msg {
		resp := m.handler.Answer(sessionID, questionID, answer)
		if resp.Error != nil {
			return failedMsg{err: fmt.Errorf("%s", resp.Error.Message)}
		}
		if resp.SectionComplete {
			return sectionDoneMsg{sessionID: sessionID, section: section}
		}
		return questionMsg{sessionID: sessionID, section: section, question: resp.NextQuestion}
	}
}

// advanceCmd ends the current section. terminal selects completed vs skipped.
func (m InterviewModel) advanceCmd(skip bool) tea.Cmd {
	sessionID := m.sessionID
	return func() tea.Msg {
		var current string
		var next *tool.QuestionPayload
		var complete bool

		if skip {
			resp := m.handler.Skip(sessionID)
			if resp.Error != nil {
				return failedMsg{err: fmt.Errorf("%s", resp.Error.Message)}
			}
			current, next = resp.CurrentSection, resp.NextQuestion
			complete = resp.SkippedSection == resp.CurrentSection && next == nil
		} else {
			resp := m.handler.Advance(sessionID)
			if resp.Error != nil {
				return failedMsg{err: fmt.Errorf("%s", resp.Error.Message)}
			}
			current, next = resp.CurrentSection, resp.NextQuestion
			complete = resp.SessionComplete
		}

		if complete {
			name := fmt.Sprintf("requirements-%s.md", shortID(sessionID))
			doc := m.handler.GenerateDocument(sessionID, name)
			if doc.Error != nil {
				return failedMsg{err: fmt.Errorf("%s", doc.Error.Message)}
			}
			return sessionDoneMsg{savedTo: doc.SavedTo}
		}
		if next == nil {
			return sectionDoneMsg{sessionID: sessionID, section: current}
		}
		return questionMsg{sessionID: sessionID, section: current, question: next}
	}
}

// Update handles messages for the interview.
func (m InterviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case escResetMsg:
		m.escPending = false
		return m, nil

	case questionMsg:
		m.phase = phaseAsking
		m.sessionID = msg.sessionID
		m.section = msg.section
		m.question = msg.question
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case sectionDoneMsg:
		m.phase = phaseSectionDone
		m.sessionID = msg.sessionID
		m.section = msg.section
		return m, nil

	case sessionDoneMsg:
		m.phase = phaseSessionDone
		m.section = msg.savedTo
		return m, nil

	case failedMsg:
		m.phase = phaseFailed
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m InterviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC:
		return m, tea.Quit

	case KeyEsc:
		if m.escPending {
			return m, tea.Quit
		}
		m.escPending = true
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
			return escResetMsg{}
		})

	case KeyCtrlS:
		if m.phase == phaseAsking || m.phase == phaseSectionDone {
			return m, m.advanceCmd(true)
		}
		return m, nil

	case KeyEnter:
		switch m.phase {
		case phaseAsking:
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				if m.question != nil && !m.question.Required {
					// Blank on an optional question moves past it by
					// recording an explicit non-answer.
					return m, m.answerCmd("(not specified)")
				}
				return m, nil
			}
			return m, m.answerCmd(value)
		case phaseSectionDone:
			return m, m.advanceCmd(false)
		case phaseSessionDone, phaseFailed:
			return m, tea.Quit
		}
		return m, nil
	}

	if m.phase == phaseAsking {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the interview.
func (m InterviewModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	questionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E5E7EB")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	okStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("Understanding your requirements"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString(dimStyle.Render("Loading session..."))

	case phaseAsking:
		b.WriteString(dimStyle.Render("Section: " + m.section))
		b.WriteString("\n\n")
		if m.question != nil {
			b.WriteString(questionStyle.Render(m.question.Text))
			b.WriteString("\n")
			if m.question.Description != "" {
				b.WriteString(dimStyle.Render(m.question.Description))
				b.WriteString("\n")
			}
			if m.question.Required {
				b.WriteString(dimStyle.Render("(required)"))
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(m.input.View())
		}

	case phaseSectionDone:
		b.WriteString(okStyle.Render(fmt.Sprintf("Section %q complete.", m.section)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press Enter to continue to the next section."))

	case phaseSessionDone:
		b.WriteString(okStyle.Render("All sections finished."))
		b.WriteString("\n\n")
		if m.section != "" {
			b.WriteString(fmt.Sprintf("Requirements document written to %s\n", m.section))
		}
		b.WriteString(dimStyle.Render("Press Enter to exit."))

	case phaseFailed:
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press Enter to exit."))
	}

	b.WriteString("\n\n")
	footer := "Enter to submit · Ctrl+S to skip section"
	if m.escPending {
		footer = "Press Esc again to quit"
	}
	b.WriteString(dimStyle.Render(footer))

	boxWidth := maxInterviewWidth
	if m.width > 0 && m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#374151")).
		Padding(1, 2).
		Width(boxWidth).
		Render(b.String())
}

// shortID returns the first uuid segment for filenames and display.
func shortID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}
