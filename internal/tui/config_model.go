package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/store"
)

// Menu item indices for the onboarding dialog
const (
	menuAPIKey = iota
	menuPosition
	menuTheme
	menuSave
	menuReset
	menuQuit
	menuItemCount
)

// ConfigModel is the onboarding/configuration dialog. It owns the three
// shell settings (credential, position, theme) and writes them through the
// store under their fixed keys. The dialog never auto-dismisses: it closes
// only on save or quit.
type ConfigModel struct {
	store *store.Store
	cfg   config.Config

	keyInput textinput.Model
	cursor   int
	editing  bool
	feedback string

	// Saved reports whether the dialog persisted a configuration before
	// closing.
	Saved bool

	width  int
	height int
}

// NewConfigModel creates the onboarding dialog seeded from the stored
// configuration.
func NewConfigModel(st *store.Store) ConfigModel {
	cfg := config.Load(st)
	applyTheme(cfg.Theme)

	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 200
	ti.SetValue(cfg.Credential)

	return ConfigModel{
		store:    st,
		cfg:      cfg,
		keyInput: ti,
	}
}

// Init initializes the dialog.
func (m ConfigModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles dialog input.
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateMenu(msg)
	}

	return m, nil
}

func (m ConfigModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.cfg.Credential = strings.TrimSpace(m.keyInput.Value())
		m.editing = false
		m.keyInput.Blur()
		return m, nil
	case "esc":
		m.keyInput.SetValue(m.cfg.Credential)
		m.editing = false
		m.keyInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m ConfigModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.feedback = ""

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		m.cursor--
		if m.cursor < 0 {
			m.cursor = menuItemCount - 1
		}

	case "down", "j":
		m.cursor++
		if m.cursor >= menuItemCount {
			m.cursor = 0
		}

	case "enter", " ":
		return m.activate()
	}

	return m, nil
}

func (m ConfigModel) activate() (tea.Model, tea.Cmd) {
	switch m.cursor {
	case menuAPIKey:
		m.editing = true
		m.keyInput.Focus()
		return m, textinput.Blink

	case menuPosition:
		m.cfg.Position = nextPosition(m.cfg.Position)

	case menuTheme:
		if m.cfg.Theme == config.ThemeLight {
			m.cfg.Theme = config.ThemeDark
		} else {
			m.cfg.Theme = config.ThemeLight
		}
		applyTheme(m.cfg.Theme)

	case menuSave:
		if strings.TrimSpace(m.cfg.Credential) == "" {
			m.feedback = "An API key is required"
			return m, nil
		}
		if err := config.SaveShell(m.store, m.cfg); err != nil {
			m.feedback = fmt.Sprintf("Save failed: %v", err)
			return m, nil
		}
		m.Saved = true
		return m, tea.Quit

	case menuReset:
		if err := config.ResetShell(m.store); err != nil {
			m.feedback = fmt.Sprintf("Reset failed: %v", err)
			return m, nil
		}
		m.cfg = config.Default()
		m.keyInput.SetValue("")
		applyTheme(m.cfg.Theme)
		m.feedback = "Configuration reset"

	case menuQuit:
		return m, tea.Quit
	}

	return m, nil
}

func nextPosition(p config.Position) config.Position {
	for i, pos := range config.Positions {
		if pos == p {
			return config.Positions[(i+1)%len(config.Positions)]
		}
	}
	return config.BottomRight
}

// View renders the dialog.
func (m ConfigModel) View() string {
	var b strings.Builder

	b.WriteString(configTitleStyle.Render("⚙ Chat Widget Setup"))
	b.WriteString("\n\n")

	items := []struct {
		label string
		value string
	}{
		{"API key", m.keyView()},
		{"Position", string(m.cfg.Position)},
		{"Theme", string(m.cfg.Theme)},
		{"Save", ""},
		{"Reset", ""},
		{"Quit", ""},
	}

	for i, item := range items {
		cursor := "  "
		style := configMenuItemStyle
		if i == m.cursor {
			cursor = configCursorStyle.Render("▸ ")
			style = configMenuSelectedStyle
		}

		line := cursor + style.Render(item.label)
		if item.value != "" {
			line += configValueStyle.Render("  " + item.value)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.feedback != "" {
		b.WriteString("\n")
		b.WriteString(configFeedbackStyle.Render(m.feedback))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate  "))
	b.WriteString(statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select  "))
	b.WriteString(statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Close"))

	panel := configPanelStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
	}
	return panel
}

func (m ConfigModel) keyView() string {
	if m.editing {
		return m.keyInput.View()
	}
	if m.cfg.Credential == "" {
		return "(not set)"
	}
	return strings.Repeat("•", 8)
}

// RunConfig starts the onboarding dialog and reports whether a
// configuration was saved.
func RunConfig(st *store.Store) (bool, error) {
	p := tea.NewProgram(NewConfigModel(st), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if cm, ok := final.(ConfigModel); ok {
		return cm.Saved, nil
	}
	return false, nil
}
