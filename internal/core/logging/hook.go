package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts owner_id and conversation_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if ownerID := GetOwnerID(ctx); ownerID != "" {
		e.Str(string(ownerIDKey), ownerID)
	}

	if conversationID := GetConversationID(ctx); conversationID != "" {
		e.Str(string(conversationIDKey), conversationID)
	}
}
