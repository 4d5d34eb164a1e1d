// Package chat models the conversation transcript exchanged with the command
// interpreter.
package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation errors for Message.
var (
	ErrEmptyContent      = errors.New("message content is required")
	ErrContentTooLarge   = errors.New("message content exceeds maximum size")
	ErrEmptyConversation = errors.New("conversation id is required")
	ErrInvalidRole       = errors.New("invalid message role")
)

// MaxContentSize is the maximum allowed content size in bytes (64KB).
const MaxContentSize = 64 << 10

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one line of a conversation. Matcher is set on assistant replies
// to the name of the matcher that produced the command, if any.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	OwnerID        string    `json:"owner_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Matcher        string    `json:"matcher,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessage creates a validated message.
func NewMessage(conversationID, ownerID string, role Role, content string) (Message, error) {
	m := Message{
		ConversationID: conversationID,
		OwnerID:        ownerID,
		Role:           role,
		Content:        content,
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks that the message meets all constraints.
func (m Message) Validate() error {
	if m.ConversationID == "" {
		return ErrEmptyConversation
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	if len(m.Content) > MaxContentSize {
		return ErrContentTooLarge
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	return nil
}

// TruncateContent shortens s to at most MaxContentSize bytes without
// splitting a UTF-8 sequence.
func TruncateContent(s string) string {
	if len(s) <= MaxContentSize {
		return s
	}
	n := MaxContentSize
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Inbound is a user message delivered by a chat transport. PriorReply is the
// assistant's previous reply in the conversation, if the transport knows it.
type Inbound struct {
	ConversationID string
	OwnerID        string
	Text           string
	PriorReply     string
}
