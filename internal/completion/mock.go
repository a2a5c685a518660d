package completion

import (
	"context"

	"github.com/diogo/chatwidget/internal/models"
)

// MockCompleter is a scripted Completer for tests.
type MockCompleter struct {
	Reply string
	Err   error

	CallCount   int
	LastSystem  string
	LastHistory []models.Message
	LastUser    string
}

var _ Completer = (*MockCompleter)(nil)

func (m *MockCompleter) Complete(_ context.Context, systemPrompt string, history []models.Message, userText string) (models.Message, error) {
	m.CallCount++
	m.LastSystem = systemPrompt
	m.LastHistory = append([]models.Message(nil), history...)
	m.LastUser = userText

	if m.Err != nil {
		return models.Message{}, m.Err
	}
	return models.NewMessage(models.RoleAssistant, m.Reply), nil
}
