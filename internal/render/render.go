// Package render provides markdown rendering for terminal display.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/diogo/chatwidget/internal/config"
)

// glamour.TermRenderer is not safe for concurrent Render calls, so the
// renderer table and the renderers themselves share one mutex. The widget
// renders from a single event loop; the lock is for the CLI paths.
var (
	mu        sync.Mutex
	renderers = make(map[rendererKey]*glamour.TermRenderer)
)

type rendererKey struct {
	theme config.Theme
	width int
}

// Markdown renders content in the widget's theme at the given width. On any
// rendering failure the raw text is returned, so a reply is never lost to a
// styling problem.
func Markdown(content string, theme config.Theme, width int) string {
	mu.Lock()
	defer mu.Unlock()

	r, err := rendererLocked(theme, width)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	// glamour pads the output with blank lines.
	return strings.TrimRight(out, "\n")
}

func rendererLocked(theme config.Theme, width int) (*glamour.TermRenderer, error) {
	key := rendererKey{theme: theme, width: width}
	if r, ok := renderers[key]; ok {
		return r, nil
	}

	style := "light"
	if theme == config.ThemeDark {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, err
	}
	renderers[key] = r
	return r, nil
}
