package logging

import (
	"context"
	"testing"
)

func TestWithOwnerID(t *testing.T) {
	ctx := WithOwnerID(context.Background(), "owner-123")

	if got := GetOwnerID(ctx); got != "owner-123" {
		t.Errorf("GetOwnerID() = %q, want %q", got, "owner-123")
	}
}

func TestWithConversationID(t *testing.T) {
	ctx := WithConversationID(context.Background(), "conv-456")

	if got := GetConversationID(ctx); got != "conv-456" {
		t.Errorf("GetConversationID() = %q, want %q", got, "conv-456")
	}
}

func TestGetIDs_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetOwnerID(ctx); got != "" {
		t.Errorf("GetOwnerID() = %q, want empty string", got)
	}
	if got := GetConversationID(ctx); got != "" {
		t.Errorf("GetConversationID() = %q, want empty string", got)
	}
}
