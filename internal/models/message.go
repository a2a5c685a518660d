// Package models defines the core data types shared across the widget.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleSystem only ever appears on the wire as the leading instruction
	// turn of a completion request. It is never stored in a conversation log.
	RoleSystem Role = "system"
)

// Message is one committed conversation turn. A committed message is
// immutable; it leaves the log only through a full-history clear.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage mints a message with a fresh opaque ID and the current instant.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
