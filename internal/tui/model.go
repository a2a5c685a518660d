package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/diogo/chatwidget/internal/config"
	widgeterrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/reveal"
	"github.com/diogo/chatwidget/internal/session"
	"github.com/diogo/chatwidget/internal/voice"
)

// Message types for the widget event loop
type (
	replyMsg struct {
		msg models.Message
	}
	revealMsg struct {
		prefix string
		done   bool
	}
	transcriptMsg struct {
		text string
		err  error
	}
)

// Model is the chat widget TUI state.
type Model struct {
	cfg     config.Config
	session *session.Session

	// recognizer is nil when the host has no speech capability; the mic
	// affordance is then not rendered at all.
	recognizer voice.Recognizer

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	loading    bool
	listening  bool
	listenStop context.CancelFunc

	// Transient reveal state; the committed message is appended only once
	// the run completes.
	run          *reveal.Run
	revealText   string
	pendingReply models.Message
	hasPending   bool

	notice string

	ready  bool
	width  int
	height int
}

// New creates the chat widget model.
func New(cfg config.Config, sess *session.Session, recognizer voice.Recognizer) Model {
	applyTheme(cfg.Theme)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.Focus()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		cfg:        cfg,
		session:    sess,
		recognizer: recognizer,
		textarea:   ta,
		spinner:    s,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		m.notice = ""

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			return m.submit(m.textarea.Value())

		case "ctrl+t":
			return m.toggleMicrophone()

		case "ctrl+l":
			if err := m.session.Clear(); err != nil {
				log.Warn().Err(err).Msg("failed to clear chat history")
			}
			m.updateViewport()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil
		}

	case replyMsg:
		m.loading = false
		if m.cfg.EnableTypingAnimation {
			m.pendingReply = msg.msg
			m.hasPending = true
			m.revealText = ""
			m.run = reveal.Start(msg.msg.Content, reveal.DefaultInterval, true)
			return m, tea.Batch(waitReveal(m.run), m.spinner.Tick)
		}
		m.session.Commit(msg.msg)
		m.updateViewport()
		m.viewport.GotoBottom()

	case revealMsg:
		if msg.done {
			m.run = nil
			m.revealText = ""
			if m.hasPending {
				m.session.Commit(m.pendingReply)
				m.hasPending = false
			}
			m.updateViewport()
			m.viewport.GotoBottom()
		} else {
			m.revealText = msg.prefix
			m.updateViewport()
			m.viewport.GotoBottom()
			cmds = append(cmds, waitReveal(m.run))
		}

	case transcriptMsg:
		m.listening = false
		if m.listenStop != nil {
			m.listenStop()
			m.listenStop = nil
		}
		switch {
		case errors.Is(msg.err, context.Canceled):
			// toggled off; pending input stays untouched
		case msg.err != nil:
			log.Warn().Err(msg.err).Msg("speech recognition failed")
		case msg.text != "":
			// the transcript fully replaces the pending input
			m.textarea.SetValue(msg.text)
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading && !m.listening {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs the send path for typed input, a quick prompt shortcut, or
// voice-confirmed text.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	input = strings.TrimSpace(input)
	if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
		return m, tea.Quit
	}
	if prompt, ok := m.quickPrompt(input); ok {
		input = prompt
	}

	if _, err := m.session.Submit(input); err != nil {
		// Empty input and double submissions are dropped silently.
		if !widgeterrors.IsInputRejected(err) {
			log.Warn().Err(err).Msg("submission rejected")
		}
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.resolve(), m.spinner.Tick)
}

// quickPrompt maps the /N shortcut to the configured quick-start prompt.
func (m Model) quickPrompt(input string) (string, bool) {
	if len(m.session.Messages()) != 0 {
		return "", false
	}
	if !strings.HasPrefix(input, "/") {
		return "", false
	}
	n, err := strconv.Atoi(input[1:])
	if err != nil || n < 1 || n > len(m.cfg.QuickPrompts) {
		return "", false
	}
	return m.cfg.QuickPrompts[n-1], true
}

// resolve creates the command that runs the completion exchange.
func (m Model) resolve() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		return replyMsg{msg: sess.Resolve(context.Background())}
	}
}

// waitReveal delivers the next prefix of an active reveal run.
func waitReveal(r *reveal.Run) tea.Cmd {
	return func() tea.Msg {
		prefix, ok := <-r.C
		return revealMsg{prefix: prefix, done: !ok}
	}
}

// toggleMicrophone enters or leaves the listening state.
func (m Model) toggleMicrophone() (tea.Model, tea.Cmd) {
	if m.recognizer == nil {
		return m, nil
	}
	if m.listening {
		// second toggle: back to idle, buffer untouched
		if m.listenStop != nil {
			m.listenStop()
		}
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.listenStop = cancel
	m.listening = true

	rec := m.recognizer
	return m, func() tea.Msg {
		text, err := rec.Recognize(ctx)
		return transcriptMsg{text: text, err: err}
	}
}

func (m *Model) copyLastReply() {
	msgs := m.session.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				log.Warn().Err(err).Msg("failed to copy reply to clipboard")
				return
			}
			m.notice = "Copied reply to clipboard"
			return
		}
	}
}

// widgetWidth returns the inner content width of the widget box.
func (m Model) widgetWidth() int {
	w := m.width - 6
	if w > 72 {
		w = 72
	}
	if w < 24 {
		w = 24
	}
	return w
}

// layout sizes the viewport and textarea for the current terminal.
func (m *Model) layout() {
	contentWidth := m.widgetWidth()

	headerHeight := 2
	inputHeight := 3
	statusHeight := 1
	stripHeight := 0
	if m.showQuickPrompts() {
		stripHeight = 4
	}

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - stripHeight - 4
	if vpHeight < 5 {
		vpHeight = 5
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

func (m Model) showQuickPrompts() bool {
	return len(m.session.Messages()) == 0 && len(m.cfg.QuickPrompts) > 0 && !m.loading && m.run == nil
}

// updateViewport refreshes the viewport with the committed log plus any
// transient reveal bubble.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	bubbleWidth := m.viewport.Width - 4
	var content strings.Builder

	for i, msg := range m.session.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		m.writeBubble(&content, msg.Role, msg.Content, bubbleWidth)
		content.WriteString("\n")
	}

	if m.run != nil {
		content.WriteString("\n")
		label := assistantLabelStyle.Render(m.cfg.AssistantAvatar + " Assistant")
		bubble := typingBubbleStyle.Width(bubbleWidth).Render(m.revealText + "▌")
		content.WriteString(label + "\n" + bubble + "\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) writeBubble(content *strings.Builder, role models.Role, text string, width int) {
	if role == models.RoleUser {
		label := userLabelStyle.Render(m.cfg.UserAvatar + " You")
		bubble := userBubbleStyle.Width(width).Render(text)
		content.WriteString(label + "\n" + bubble)
		return
	}

	label := assistantLabelStyle.Render(m.cfg.AssistantAvatar + " Assistant")
	rendered := render.Markdown(text, m.cfg.Theme, width-2)
	bubble := assistantBubbleStyle.Width(width).Render(rendered)
	content.WriteString(label + "\n" + bubble)
}

// View renders the widget anchored to its configured corner.
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.widgetWidth()
	var sections []string

	// Header
	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render(m.cfg.AssistantAvatar+" AI Assistant"),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	// Messages
	if len(m.session.Messages()) == 0 && m.run == nil && !m.loading {
		welcome := welcomeStyle.Width(contentWidth).Render(
			"\nStart a conversation with the AI assistant!\n")
		sections = append(sections, welcome)
	} else {
		sections = append(sections, m.viewport.View())
	}

	// Quick prompts
	if m.showQuickPrompts() {
		sections = append(sections, m.renderQuickPrompts(contentWidth))
	}

	// Input
	sections = append(sections, m.renderInput(contentWidth))

	// Status bar
	sections = append(sections, m.renderStatusBar(contentWidth))

	widget := widgetStyle.Width(contentWidth + 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...))

	h, v := corner(m.cfg.Position)
	return lipgloss.Place(m.width, m.height, h, v, widget)
}

func (m Model) renderQuickPrompts(width int) string {
	var lines []string
	lines = append(lines, hintStyle.Render("Quick prompts:"))
	for i, prompt := range m.cfg.QuickPrompts {
		chip := fmt.Sprintf("%s %s",
			configCursorStyle.Render(fmt.Sprintf("/%d", i+1)),
			promptChipStyle.Render(prompt))
		lines = append(lines, chip)
	}
	return promptStripStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderInput(width int) string {
	var inner string
	switch {
	case m.loading:
		inner = m.spinner.View() + loadingStyle.Render(" Thinking...")
	case m.listening:
		inner = listeningStyle.Render("🎤 Listening...") +
			hintStyle.Render("  (Ctrl+T to stop)")
	default:
		label := inputLabelStyle.Render("You")
		if m.recognizer != nil {
			label += hintStyle.Render("  🎤 Ctrl+T")
		}
		inner = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	return inputPanelStyle.Width(width).Render(inner)
}

func (m Model) renderStatusBar(width int) string {
	if m.notice != "" {
		return statusBarStyle.Width(width).Render(configFeedbackStyle.Render(m.notice))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+L", "Clear"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Close"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Render(strings.Join(items, "  │  "))
}

// Run starts the chat widget.
func Run(cfg config.Config, sess *session.Session, recognizer voice.Recognizer) error {
	p := tea.NewProgram(New(cfg, sess, recognizer), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
