// Package tui provides the terminal chat widget.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/config"
)

// Palette colors (set from the widget theme)
var (
	colorPrimary lipgloss.Color
	colorBorder  lipgloss.Color
	colorText    lipgloss.Color
	colorTextDim lipgloss.Color
	colorUserBub lipgloss.Color
	colorListen  lipgloss.Color
)

// Style variables (rebuilt when the theme is applied)
var (
	headerStyle          lipgloss.Style
	titleStyle           lipgloss.Style
	hintStyle            lipgloss.Style
	widgetStyle          lipgloss.Style
	userLabelStyle       lipgloss.Style
	userBubbleStyle      lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	typingBubbleStyle    lipgloss.Style
	promptStripStyle     lipgloss.Style
	promptChipStyle      lipgloss.Style
	inputPanelStyle      lipgloss.Style
	inputLabelStyle      lipgloss.Style
	loadingStyle         lipgloss.Style
	listeningStyle       lipgloss.Style
	statusBarStyle       lipgloss.Style
	statusKeyStyle       lipgloss.Style
	statusDescStyle      lipgloss.Style
	welcomeStyle         lipgloss.Style

	configTitleStyle        lipgloss.Style
	configPanelStyle        lipgloss.Style
	configMenuItemStyle     lipgloss.Style
	configMenuSelectedStyle lipgloss.Style
	configCursorStyle       lipgloss.Style
	configValueStyle        lipgloss.Style
	configFeedbackStyle     lipgloss.Style
)

// applyTheme sets the palette for the configured theme and rebuilds every
// style from it.
func applyTheme(theme config.Theme) {
	if theme == config.ThemeDark {
		colorPrimary = lipgloss.Color("#2563eb")
		colorBorder = lipgloss.Color("#374151")
		colorText = lipgloss.Color("#f9fafb")
		colorTextDim = lipgloss.Color("#9ca3af")
		colorUserBub = lipgloss.Color("#2563eb")
		colorListen = lipgloss.Color("#ef4444")
	} else {
		colorPrimary = lipgloss.Color("#3b82f6")
		colorBorder = lipgloss.Color("#e5e7eb")
		colorText = lipgloss.Color("#111827")
		colorTextDim = lipgloss.Color("#6b7280")
		colorUserBub = lipgloss.Color("#3b82f6")
		colorListen = lipgloss.Color("#ef4444")
	}

	widgetStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorBorder).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	userLabelStyle = lipgloss.NewStyle().Foreground(colorUserBub).Bold(true)
	userBubbleStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorUserBub).
		Foreground(colorText).
		Padding(0, 1)

	assistantLabelStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	assistantBubbleStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorText).
		Padding(0, 1)

	typingBubbleStyle = assistantBubbleStyle.BorderForeground(colorPrimary)

	promptStripStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(colorBorder).
		Padding(0, 1)
	promptChipStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(colorBorder).
		Padding(0, 1)
	inputLabelStyle = lipgloss.NewStyle().Foreground(colorTextDim).Bold(true)

	loadingStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	listeningStyle = lipgloss.NewStyle().Foreground(colorListen).Bold(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	statusDescStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	welcomeStyle = lipgloss.NewStyle().Foreground(colorTextDim).Align(lipgloss.Center)

	configTitleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	configPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)
	configMenuItemStyle = lipgloss.NewStyle().Foreground(colorText)
	configMenuSelectedStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	configCursorStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	configValueStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	configFeedbackStyle = lipgloss.NewStyle().Foreground(colorPrimary)
}

// corner maps the configured widget position to placement anchors.
func corner(pos config.Position) (lipgloss.Position, lipgloss.Position) {
	switch pos {
	case config.BottomLeft:
		return lipgloss.Left, lipgloss.Bottom
	case config.TopRight:
		return lipgloss.Right, lipgloss.Top
	case config.TopLeft:
		return lipgloss.Left, lipgloss.Top
	default:
		return lipgloss.Right, lipgloss.Bottom
	}
}
