package logging

import "context"

type contextKey string

const (
	ownerIDKey        contextKey = "owner_id"
	conversationIDKey contextKey = "conversation_id"
)

// WithOwnerID adds the principal that owns the tasks being edited.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// WithConversationID adds the chat conversation a command arrived on.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, conversationIDKey, conversationID)
}

// GetOwnerID retrieves the owner ID from the context.
// Returns empty string if not present.
func GetOwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}

// GetConversationID retrieves the conversation ID from the context.
// Returns empty string if not present.
func GetConversationID(ctx context.Context) string {
	if id, ok := ctx.Value(conversationIDKey).(string); ok {
		return id
	}
	return ""
}
