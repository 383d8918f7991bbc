package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/ema-dictation/core"
	"github.com/koscakluka/ema-dictation/core/events"
	"github.com/koscakluka/ema-dictation/core/llms"
)

const (
	defaultWidth   = 80
	historyEntries = 5
)

type turnController interface {
	Signal(signal events.TurnSignal) bool
	Abandon() bool
	State() orchestration.TurnState
}

type phase int

const (
	phaseIdle phase = iota
	phaseRecording
	phaseFormatting
)

type styles struct {
	title   lipgloss.Style
	status  lipgloss.Style
	errText lipgloss.Style
	label   lipgloss.Style
	interim lipgloss.Style
	output  lipgloss.Style
	help    lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.Color("#01cdfe")
	muted := lipgloss.Color("#9ca3d8")
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		status:  lipgloss.NewStyle().Foreground(accent),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f87")),
		label:   lipgloss.NewStyle().Bold(true),
		interim: lipgloss.NewStyle().Foreground(muted).Italic(true),
		output: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(muted),
	}
}

type eventMsg struct{ event events.Event }

type eventsClosedMsg struct{}

type deliveredMsg struct{ err error }

func deliverText(d delivery, text, transcript string) tea.Cmd {
	return func() tea.Msg {
		return deliveredMsg{err: d.Deliver(context.Background(), text, transcript)}
	}
}

func waitForEvent(eventCh <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: event}
	}
}

type model struct {
	turns    turnController
	eventCh  <-chan events.Event
	autoStop bool
	// deliver is optional, finished dictations only stay on screen without it
	deliver delivery

	spinner spinner.Model
	styles  styles
	width   int

	phase      phase
	status     string
	lastErr    error
	segments   []string
	interim    string
	transcript string
	reply      strings.Builder
	history    []string
}

func newModel(turns turnController, eventCh <-chan events.Event, autoStop bool) *model {
	return &model{
		turns:    turns,
		eventCh:  eventCh,
		autoStop: autoStop,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:   defaultStyles(),
		width:    defaultWidth,
		status:   "press space to start",
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.eventCh))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case eventMsg:
		return m, tea.Batch(m.handleEvent(msg.event), waitForEvent(m.eventCh))

	case deliveredMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		return m, nil

	case eventsClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		if m.turns.State() == orchestration.TurnStateRecording {
			m.turns.Signal(events.NewTurnStopForced())
		} else {
			m.turns.Signal(events.NewTurnStart())
		}
	case "enter":
		m.turns.Signal(events.NewTurnStopNatural())
	case "esc":
		m.turns.Abandon()
	}
	return nil
}

func (m *model) handleEvent(event events.Event) tea.Cmd {
	switch event := event.(type) {
	case events.TurnStarted:
		m.phase = phaseRecording
		m.status = "listening"
		m.lastErr = nil
		m.segments = nil
		m.interim = ""
		m.transcript = ""
		m.reply.Reset()

	case events.UserTranscriptInterimUpdated:
		m.interim = event.Transcript

	case events.UserTranscriptSegment:
		m.segments = append(m.segments, event.Segment)
		m.interim = ""

	case events.UserSpeechEnded:
		if m.autoStop && m.turns.State() == orchestration.TurnStateRecording {
			m.turns.Signal(events.NewTurnStopNatural())
		}

	case events.UserTranscriptionFinalized:
		m.phase = phaseFormatting
		m.status = fmt.Sprintf("formatting (%s stop)", event.Mode)
		m.transcript = event.Transcript
		m.interim = ""

	case events.AssistantResponseSegment:
		m.reply.WriteString(event.Segment)

	case events.TurnCompleted:
		m.phase = phaseIdle
		m.status = "done, press space for the next turn"
		text := lastAssistantMessage(event.Messages)
		if text == "" {
			text = m.transcript
		}
		m.reply.Reset()
		if text == "" {
			return nil
		}
		m.pushHistory(text)
		if m.deliver != nil {
			return deliverText(m.deliver, text, m.transcript)
		}

	case events.TurnDiscarded:
		m.phase = phaseIdle
		m.status = "nothing was said"

	case events.TurnFailed:
		m.phase = phaseIdle
		m.status = "formatting failed"
		m.lastErr = event.Err

	case events.TurnCancelled:
		m.phase = phaseIdle
		m.status = "turn abandoned"
		m.reply.Reset()

	case events.TurnSignalIgnored:
		m.status = fmt.Sprintf("%s ignored while %s", event.Signal, event.State)

	case events.FragmentRejected:
		m.lastErr = event.Err
	}
	return nil
}

func (m *model) pushHistory(text string) {
	m.history = append(m.history, text)
	if len(m.history) > historyEntries {
		m.history = m.history[len(m.history)-historyEntries:]
	}
}

func lastAssistantMessage(messages []llms.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llms.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

func (m *model) View() string {
	wrap := max(m.width-4, 20)
	var b strings.Builder

	b.WriteString(m.styles.title.Render("dictate"))
	b.WriteString("\n\n")

	status := m.status
	if m.phase != phaseIdle {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(m.styles.status.Render(status))
	b.WriteString("\n")
	if m.lastErr != nil {
		b.WriteString(m.styles.errText.Render(wordwrap.String(m.lastErr.Error(), wrap)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	heard := m.transcript
	if heard == "" {
		heard = strings.Join(m.segments, " ")
	}
	if heard != "" || m.interim != "" {
		b.WriteString(m.styles.label.Render("Heard"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(heard, wrap))
		if m.interim != "" {
			if heard != "" {
				b.WriteString(" ")
			}
			b.WriteString(m.styles.interim.Render(wordwrap.String(m.interim, wrap)))
		}
		b.WriteString("\n\n")
	}

	if m.reply.Len() > 0 {
		b.WriteString(m.styles.label.Render("Formatting"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(m.reply.String(), wrap))
		b.WriteString("\n\n")
	}

	for i := len(m.history) - 1; i >= 0; i-- {
		b.WriteString(m.styles.output.Render(wordwrap.String(m.history[i], wrap-4)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("space start/stop • enter natural stop • esc abandon • q quit"))
	b.WriteString("\n")
	return b.String()
}
