package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/scripts"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

const PlaceHolderText = "Speak to the agent..."

// Message roles in the chat transcript.
const (
	roleUser   = "user"
	roleAgent  = "agent"
	roleSystem = "system"
	roleError  = "error"
)

// Step kinds tag what a step result should render as.
const (
	stepText     = "text"
	stepOpen     = "open"
	stepDreams   = "dreams"
	stepEmotions = "emotions"
	stepSymbols  = "symbols"
)

const helpText = `
Commands:
• :open <path> - Load and merge a .sn/.chaos file
• :dreams - Witness the agent's current visions
• :emotions - Query the agent's emotional state
• :symbols - Examine the agent's symbolic knowledge
• :action - See the agent's last chosen action
• :report - Show the latest step report JSON
• :clear - Clear the agent's narrative memory
• :help - Show this help
• :quit - Leave the console
• Ctrl+Y - Copy the latest report JSON to the clipboard
• Ctrl+C - Quit
`

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	agent        *agent.Agent
	sess         *session.Session
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	history    []chatMessage
	lastReport *agent.Report

	// Quit confirmation state
	showQuitModal bool
}

type chatMessage struct {
	role    string
	content string
}

type stepMsg struct {
	kind   string
	path   string
	report *agent.Report
	err    error
}

type clipboardMsg struct {
	copied bool
	err    error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(a *agent.Agent, sess *session.Session) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		agent:        a,
		sess:         sess,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

// writeChatContent rebuilds the chat panel from the transcript for the
// current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for panel padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("CHAOS CONSOLE") + "\n\n")
	content.WriteString("Speak to the agent below. Type :help for commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range m.history {
		switch msg.role {
		case roleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.content, chatWidth-6) + "\n\n")
		case roleAgent:
			content.WriteString(formatAgentMessage(m.agent.Name(), msg.content, chatWidth) + "\n\n")
		case roleSystem:
			content.WriteString(promptStyle.Render(wordwrap.String(msg.content, chatWidth)) + "\n\n")
		case roleError:
			content.WriteString(errorStyle.Render(wordwrap.String(msg.content, chatWidth)) + "\n\n")
		}
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// writeMetadata renders the agent panel from the live agent state.
func writeMetadata(a *agent.Agent, sess *session.Session, last *agent.Report) string {
	st := a.ExportState()

	var content strings.Builder
	content.WriteString(titleStyle.Render("AGENT STATE") + "\n\n")

	content.WriteString("Agent:\n")
	content.WriteString(a.Name() + "\n\n")

	content.WriteString("Session:\n")
	if sess != nil {
		content.WriteString(sess.ID.String()[:8] + "...\n\n")
	} else {
		content.WriteString("not persisted\n\n")
	}

	content.WriteString("Composure:\n")
	content.WriteString(fmt.Sprintf("%d\n\n", st.Composure))

	if len(st.Emotions) > 0 {
		content.WriteString("Emotions:\n")
		for _, e := range st.Emotions {
			content.WriteString(fmt.Sprintf("• %s: %d\n", e.Name, e.Intensity))
		}
		content.WriteString("\n")
	} else {
		content.WriteString("Emotions:\nNone active\n\n")
	}

	content.WriteString("Symbols:\n")
	content.WriteString(fmt.Sprintf("%d known\n\n", len(st.Symbols)))

	content.WriteString("Last action:\n")
	if last != nil && last.Action != nil {
		content.WriteString(last.Action.Kind + "\n\n")
	} else {
		content.WriteString("idle\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy report\n")
	content.WriteString("• :help: Commands\n")

	return content.String()
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// The viewport ignores events outside its bounds, so all mouse
		// events can pass through for scroll and selection.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.agent, m.sess, m.lastReport))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			return m, m.copyReport()
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.history = append(m.history, chatMessage{role: roleUser, content: input})
			m.writeChatContent()
			return m, m.stepWith(stepText, "", agent.StepInput{Text: input})
		}

	case stepMsg:
		m.loading = false
		if msg.err != nil {
			m.history = append(m.history, chatMessage{role: roleError, content: "Error: " + msg.err.Error()})
			m.writeChatContent()
			return m, nil
		}
		m.lastReport = msg.report
		m.history = append(m.history, chatMessage{role: roleAgent, content: renderStep(msg)})
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.agent, m.sess, m.lastReport))
		return m, nil

	case clipboardMsg:
		switch {
		case msg.err != nil:
			m.history = append(m.history, chatMessage{role: roleError, content: "Clipboard error: " + msg.err.Error()})
		case !msg.copied:
			m.history = append(m.history, chatMessage{role: roleSystem, content: "No report to copy yet."})
		default:
			m.history = append(m.history, chatMessage{role: roleSystem, content: "✓ Report copied to clipboard"})
		}
		m.writeChatContent()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.textarea.Reset()

	fields := strings.SplitN(strings.TrimPrefix(input, ":"), " ", 2)
	cmd := strings.ToLower(strings.TrimSpace(fields[0]))
	arg := ""
	if len(fields) > 1 {
		arg = strings.TrimSpace(fields[1])
	}

	switch cmd {
	case "open":
		if arg == "" {
			m.history = append(m.history, chatMessage{role: roleSystem, content: "Usage: :open <path>"})
			break
		}
		m.history = append(m.history, chatMessage{role: roleUser, content: input})
		m.loading = true
		m.writeChatContent()
		return m, m.openScript(arg)

	case "dreams", "emotions", "symbols":
		m.history = append(m.history, chatMessage{role: roleUser, content: input})
		m.loading = true
		m.writeChatContent()
		return m, m.stepWith(cmd, "", agent.StepInput{})

	case "action":
		if m.lastReport != nil && m.lastReport.Action != nil {
			m.history = append(m.history, chatMessage{role: roleAgent, content: renderAction(m.lastReport.Action)})
		} else {
			m.history = append(m.history, chatMessage{role: roleAgent, content: "The agent rests in contemplative stillness."})
		}

	case "report":
		if m.lastReport == nil {
			m.history = append(m.history, chatMessage{role: roleSystem, content: "No report yet."})
			break
		}
		data, err := json.MarshalIndent(m.lastReport, "", "  ")
		if err != nil {
			m.history = append(m.history, chatMessage{role: roleError, content: "Error: " + err.Error()})
			break
		}
		m.history = append(m.history, chatMessage{role: roleSystem, content: string(data)})

	case "clear":
		m.agent.ClearNarrative()
		m.history = append(m.history, chatMessage{role: roleSystem, content: "✓ Agent's narrative memory cleared"})

	case "help":
		m.history = append(m.history, chatMessage{role: roleSystem, content: strings.TrimSpace(helpText)})

	case "quit", "exit", "q":
		return m, tea.Quit

	default:
		m.history = append(m.history, chatMessage{role: roleSystem, content: "Unknown command: :" + cmd + " (use :help)"})
	}

	m.writeChatContent()
	return m, nil
}

// stepWith runs one agent step off the UI loop. The loading flag keeps
// steps serialized, so the agent is never stepped concurrently.
func (m ConsoleUI) stepWith(kind, path string, in agent.StepInput) tea.Cmd {
	return func() tea.Msg {
		report, err := m.agent.Step(in)
		return stepMsg{kind: kind, path: path, report: report, err: err}
	}
}

func (m ConsoleUI) openScript(path string) tea.Cmd {
	return func() tea.Msg {
		source, err := scripts.Resolve(path)
		if err != nil {
			return stepMsg{kind: stepOpen, path: path, err: err}
		}
		if err := chaos.Validate(source); err != nil {
			return stepMsg{kind: stepOpen, path: path, err: err}
		}
		report, err := m.agent.Step(agent.StepInput{Script: source})
		return stepMsg{kind: stepOpen, path: path, report: report, err: err}
	}
}

func (m ConsoleUI) copyReport() tea.Cmd {
	return func() tea.Msg {
		if m.lastReport == nil {
			return clipboardMsg{}
		}
		data, err := json.MarshalIndent(m.lastReport, "", "  ")
		if err != nil {
			return clipboardMsg{err: err}
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			return clipboardMsg{err: err}
		}
		return clipboardMsg{copied: true}
	}
}

// renderStep turns a step result into the agent's chat reply.
func renderStep(msg stepMsg) string {
	r := msg.report
	switch msg.kind {
	case stepOpen:
		return fmt.Sprintf("Merged %s into memory.\n%s", msg.path, statusSummary(r))

	case stepDreams:
		if len(r.Dreams) == 0 {
			return "The agent dreams in silence..."
		}
		var b strings.Builder
		b.WriteString("Visions:\n")
		for i, dream := range r.Dreams {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, dream))
		}
		return strings.TrimRight(b.String(), "\n")

	case stepEmotions:
		if len(r.Emotions) == 0 {
			return "The agent rests in emotional stillness."
		}
		var b strings.Builder
		b.WriteString("Emotional state:\n")
		for _, e := range r.Emotions {
			b.WriteString(fmt.Sprintf("%s: %d/10\n", e.Name, e.Intensity))
		}
		return strings.TrimRight(b.String(), "\n")

	case stepSymbols:
		if len(r.Symbols) == 0 {
			return "The agent's symbolic space is empty."
		}
		keys := make([]string, 0, len(r.Symbols))
		for k := range r.Symbols {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("Symbolic knowledge:\n")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("%s: %v\n", k, r.Symbols[k]))
		}
		return strings.TrimRight(b.String(), "\n")

	default:
		return statusSummary(r)
	}
}

func renderAction(a *agent.Action) string {
	var b strings.Builder
	b.WriteString("Last action: " + a.Kind)
	keys := make([]string, 0, len(a.Payload))
	for k := range a.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("\n  %s: %v", k, a.Payload[k]))
	}
	return b.String()
}

func statusSummary(r *agent.Report) string {
	action := "idle"
	if r.Action != nil {
		action = r.Action.Kind
	}
	return fmt.Sprintf("✓ action: %s | %d emotions | %d dreams", action, len(r.Emotions), len(r.Dreams))
}

func formatAgentMessage(name, content string, width int) string {
	prefix := name + ": "
	wrapped := wordwrap.String(content, max(width-len(prefix), 20))
	return agentStyle.Render(prefix) + wrapped
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Console?"))
	content.WriteString("\n\n")
	if m.sess != nil {
		content.WriteString("The session saves on exit.")
	} else {
		content.WriteString("Agent state is not persisted.")
	}
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
