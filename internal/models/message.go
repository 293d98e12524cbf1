package models

import (
	"time"

	"github.com/google/uuid"
)

// Message captures an individual turn stored in the conversation history.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID          string        `json:"id"`
	Role        Role          `json:"role"`
	Content     string        `json:"content"`
	CreatedAt   time.Time     `json:"created_at"`
	Attachments []*Attachment `json:"attachments,omitempty"`
}

// NewMessage builds a message with a fresh id and timestamp. Role is fixed
// at creation; the conversation is append-only, messages are never edited.
func NewMessage(role Role, content string, attachments ...*Attachment) *Message {
	msg := &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	for _, att := range attachments {
		if att != nil {
			msg.Attachments = append(msg.Attachments, att)
		}
	}
	return msg
}
