// Package config handles the widget configuration surface.
package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/diogo/chatwidget/internal/store"
	"github.com/diogo/chatwidget/internal/voice"
)

// Position places the widget in one of the four screen corners.
type Position string

const (
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
	TopRight    Position = "top-right"
	TopLeft     Position = "top-left"
)

// Positions lists every valid corner, in configuration-dialog order.
var Positions = []Position{BottomRight, BottomLeft, TopRight, TopLeft}

// Theme selects the light or dark palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Store keys owned by the surrounding configuration shell. They sit next to
// the conversation log in the same store but are written only through
// SaveShell/ResetShell.
const (
	KeyCredential = "chatgpt-widget-api-key"
	KeyPosition   = "chatgpt-widget-position"
	KeyTheme      = "chatgpt-widget-theme"
)

// Config is immutable for the lifetime of one widget instance.
type Config struct {
	Credential      string
	SystemPrompt    string
	Position        Position
	Theme           Theme
	UserAvatar      string
	AssistantAvatar string
	StorageKey      string
	QuickPrompts    []string

	EnableMicrophone      bool
	EnableTypingAnimation bool

	// Speech-recognition capability hints, see voice.Detect.
	ASRURL     string
	ASRCommand string
}

// Default returns the widget defaults.
func Default() Config {
	return Config{
		SystemPrompt:    "You are a helpful AI assistant.",
		Position:        BottomRight,
		Theme:           ThemeLight,
		UserAvatar:      "👤",
		AssistantAvatar: "🤖",
		StorageKey:      "chatgpt-widget-history",
		QuickPrompts: []string{
			"Hello! How can you help me?",
			"What's the weather like?",
			"Explain React hooks",
			"Write a simple function",
		},
	}
}

// Load builds the effective configuration: defaults, then the environment
// (a .env file is honored when present), then the values the configuration
// shell persisted in the store.
func Load(s *store.Store) Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credential = v
	}
	cfg.ASRURL = os.Getenv(voice.EnvASRURL)
	cfg.ASRCommand = os.Getenv(voice.EnvASRCommand)
	if v, ok := getString(s, KeyCredential); ok {
		cfg.Credential = v
	}
	if v, ok := getString(s, KeyPosition); ok {
		cfg.Position = ParsePosition(v)
	}
	if v, ok := getString(s, KeyTheme); ok {
		cfg.Theme = ParseTheme(v)
	}
	return cfg
}

// SaveShell persists the shell-owned settings under their fixed keys.
func SaveShell(s *store.Store, cfg Config) error {
	if err := setString(s, KeyCredential, cfg.Credential); err != nil {
		return err
	}
	if err := setString(s, KeyPosition, string(cfg.Position)); err != nil {
		return err
	}
	return setString(s, KeyTheme, string(cfg.Theme))
}

// ResetShell removes the shell-owned settings.
func ResetShell(s *store.Store) error {
	for _, key := range []string{KeyCredential, KeyPosition, KeyTheme} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// ParsePosition maps a stored string to a corner, defaulting to bottom-right.
func ParsePosition(v string) Position {
	for _, p := range Positions {
		if v == string(p) {
			return p
		}
	}
	return BottomRight
}

// ParseTheme maps a stored string to a theme, defaulting to light.
func ParseTheme(v string) Theme {
	if v == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

func getString(s *store.Store, key string) (string, bool) {
	data, err := s.Get(key)
	if err != nil {
		return "", false
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unparsable setting")
		return "", false
	}
	return v, v != ""
}

func setString(s *store.Store, key, v string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}
