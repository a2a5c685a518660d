// Package session implements the conversation session orchestrator. It is
// the single owner of the message log: every append, clear and persistence
// write flows through it, which also makes the one-outstanding-exchange
// invariant enforceable in one place.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/diogo/chatwidget/internal/completion"
	widgeterrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/history"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/store"
)

// Apology is appended in place of a real reply when an exchange fails, so
// the conversation is never left with a dangling user turn.
const Apology = "Sorry, I encountered an error. Please check your API key and try again."

// Session holds one conversation for the lifetime of a widget instance.
type Session struct {
	store        *store.Store
	key          string
	completer    completion.Completer
	systemPrompt string

	mu       sync.Mutex
	messages []models.Message
	busy     bool
}

// New restores the conversation persisted under key and wraps it in a
// session. An empty key selects the default persistence key.
func New(st *store.Store, key string, completer completion.Completer, systemPrompt string) *Session {
	if key == "" {
		key = history.DefaultKey
	}
	return &Session{
		store:        st,
		key:          key,
		completer:    completer,
		systemPrompt: systemPrompt,
		messages:     history.Load(st, key),
	}
}

// Messages returns a copy of the committed log in display order.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// InFlight reports whether an exchange is outstanding. The flag covers the
// network call and, when the typing animation is on, the reveal that
// follows it; it clears only on Commit.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Key returns the persistence key this session writes under.
func (s *Session) Key() string {
	return s.key
}

// Submit validates text, appends the user turn, persists the log, and
// marks the exchange outstanding. The user turn becomes visible
// immediately, independent of network latency. ErrEmptyInput and ErrBusy
// are silent rejections: nothing is appended and no request may be issued.
func (s *Session) Submit(text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, widgeterrors.ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return models.Message{}, widgeterrors.ErrBusy
	}

	msg := models.NewMessage(models.RoleUser, text)
	s.messages = append(s.messages, msg)
	s.persistLocked()
	s.busy = true
	return msg, nil
}

// Resolve runs the completion exchange for the turn appended by the last
// Submit: the request carries the system instruction, every message before
// that turn in original order, and the turn itself. A failed exchange
// resolves to the fixed apology reply — the raw cause is logged, never
// surfaced — so the exchange always produces a committable message.
func (s *Session) Resolve(ctx context.Context) models.Message {
	s.mu.Lock()
	if len(s.messages) == 0 {
		s.mu.Unlock()
		return models.NewMessage(models.RoleAssistant, Apology)
	}
	prior := make([]models.Message, len(s.messages)-1)
	copy(prior, s.messages[:len(s.messages)-1])
	last := s.messages[len(s.messages)-1]
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, s.systemPrompt, prior, last.Content)
	if err != nil {
		log.Error().Err(err).Msg("completion exchange failed")
		return models.NewMessage(models.RoleAssistant, Apology)
	}
	return reply
}

// Commit appends the resolved assistant turn, persists the log, and closes
// the exchange. With the typing animation on, Commit runs only after the
// full text has been revealed; until then the reply exists solely as
// transient reveal state.
func (s *Session) Commit(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.persistLocked()
	s.busy = false
}

// Send runs one full submit-resolve-commit exchange, blocking. Used by the
// one-shot CLI path, where no reveal animation sits between resolution and
// commit.
func (s *Session) Send(ctx context.Context, text string) (models.Message, error) {
	if _, err := s.Submit(text); err != nil {
		return models.Message{}, err
	}
	reply := s.Resolve(ctx)
	s.Commit(reply)
	return reply, nil
}

// Clear empties the in-memory log and removes the persisted value.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return history.Clear(s.store, s.key)
}

func (s *Session) persistLocked() {
	if err := history.Save(s.store, s.key, s.messages); err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("failed to persist chat history")
	}
}
