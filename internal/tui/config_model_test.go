package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/store"
)

func newTestConfigModel(t *testing.T) ConfigModel {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	return NewConfigModel(st)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfigModel_Navigation(t *testing.T) {
	m := newTestConfigModel(t)

	updated, _ := m.Update(keyRunes("j"))
	typed := updated.(ConfigModel)
	if typed.cursor != menuPosition {
		t.Errorf("expected cursor on position item, got %d", typed.cursor)
	}

	// Wraps from the first item back to the last.
	updated, _ = m.Update(keyRunes("k"))
	typed = updated.(ConfigModel)
	if typed.cursor != menuQuit {
		t.Errorf("expected cursor to wrap to quit, got %d", typed.cursor)
	}
}

func TestConfigModel_CyclePosition(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuPosition

	start := m.cfg.Position
	seen := map[config.Position]bool{start: true}

	cur := tea.Model(m)
	for i := 0; i < len(config.Positions)-1; i++ {
		cur, _ = cur.(ConfigModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
		seen[cur.(ConfigModel).cfg.Position] = true
	}

	if len(seen) != len(config.Positions) {
		t.Errorf("cycling should visit all %d corners, saw %d", len(config.Positions), len(seen))
	}

	// One more press returns to the start.
	cur, _ = cur.(ConfigModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := cur.(ConfigModel).cfg.Position; got != start {
		t.Errorf("full cycle should return to %s, got %s", start, got)
	}
}

func TestConfigModel_ToggleTheme(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuTheme

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)
	if typed.cfg.Theme != config.ThemeDark {
		t.Errorf("expected dark after toggle, got %s", typed.cfg.Theme)
	}

	updated, _ = typed.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed = updated.(ConfigModel)
	if typed.cfg.Theme != config.ThemeLight {
		t.Errorf("expected light after second toggle, got %s", typed.cfg.Theme)
	}
}

func TestConfigModel_EditCredential(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuAPIKey

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)
	if !typed.editing {
		t.Fatal("enter on the key item should start editing")
	}

	cur := tea.Model(typed)
	for _, r := range "sk-test" {
		cur, _ = cur.(ConfigModel).Update(keyRunes(string(r)))
	}
	cur, _ = cur.(ConfigModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	typed = cur.(ConfigModel)
	if typed.editing {
		t.Error("enter should leave editing mode")
	}
	if typed.cfg.Credential != "sk-test" {
		t.Errorf("expected credential sk-test, got %q", typed.cfg.Credential)
	}
}

func TestConfigModel_EditEscapeReverts(t *testing.T) {
	m := newTestConfigModel(t)
	m.cfg.Credential = "sk-original"
	m.keyInput.SetValue("sk-original")
	m.cursor = menuAPIKey

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)

	cur := tea.Model(typed)
	cur, _ = cur.(ConfigModel).Update(keyRunes("x"))
	cur, _ = cur.(ConfigModel).Update(tea.KeyMsg{Type: tea.KeyEsc})

	typed = cur.(ConfigModel)
	if typed.editing {
		t.Error("esc should leave editing mode")
	}
	if typed.cfg.Credential != "sk-original" {
		t.Errorf("esc should revert the credential, got %q", typed.cfg.Credential)
	}
}

func TestConfigModel_SaveRequiresCredential(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuSave

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)

	if typed.Saved {
		t.Error("save without a credential must not succeed")
	}
	if cmd != nil {
		t.Error("save without a credential must not quit")
	}
	if typed.feedback == "" {
		t.Error("save without a credential should explain itself")
	}
}

func TestConfigModel_SavePersists(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}

	m := NewConfigModel(st)
	m.cfg.Credential = "sk-live"
	m.cfg.Theme = config.ThemeDark
	m.cfg.Position = config.TopLeft
	m.cursor = menuSave

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)

	if !typed.Saved {
		t.Fatal("save with a credential should succeed")
	}
	if cmd == nil || cmd() != tea.Quit() {
		t.Error("save should close the dialog")
	}

	loaded := config.Load(st)
	if loaded.Credential != "sk-live" {
		t.Errorf("expected persisted credential, got %q", loaded.Credential)
	}
	if loaded.Theme != config.ThemeDark {
		t.Errorf("expected persisted theme dark, got %s", loaded.Theme)
	}
	if loaded.Position != config.TopLeft {
		t.Errorf("expected persisted position top-left, got %s", loaded.Position)
	}
}

func TestConfigModel_Reset(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	if err := config.SaveShell(st, config.Config{
		Credential: "sk-old",
		Theme:      config.ThemeDark,
		Position:   config.TopRight,
	}); err != nil {
		t.Fatalf("SaveShell failed: %v", err)
	}

	m := NewConfigModel(st)
	m.cursor = menuReset

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typed := updated.(ConfigModel)

	if typed.cfg.Credential != "" {
		t.Error("reset should discard the stored credential")
	}
	if typed.cfg.Theme != config.Default().Theme {
		t.Error("reset should restore the default theme")
	}

	loaded := config.Load(st)
	if loaded.Credential != "" {
		t.Error("reset should clear the persisted credential")
	}
}

func TestConfigModel_View(t *testing.T) {
	m := newTestConfigModel(t)
	m.width = 80
	m.height = 24

	view := m.View()
	for _, want := range []string{"API key", "Position", "Theme", "Save"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
	if !strings.Contains(view, "(not set)") {
		t.Error("empty credential should render as (not set)")
	}
}

func TestConfigModel_View_MasksCredential(t *testing.T) {
	m := newTestConfigModel(t)
	m.cfg.Credential = "sk-secret-value"

	if strings.Contains(m.View(), "sk-secret-value") {
		t.Error("credential must never render in clear text")
	}
}
