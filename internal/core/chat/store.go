package chat

import (
	"context"
	"time"
)

// Store defines the interface for transcript persistence.
type Store interface {
	// Append writes messages in order. IDs and timestamps are assigned when unset.
	Append(ctx context.Context, msgs ...Message) error

	// Recent returns up to limit of the newest messages in a conversation,
	// oldest first.
	Recent(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// RecentByOwner returns up to limit of the newest messages across all of an
	// owner's conversations, oldest first.
	RecentByOwner(ctx context.Context, ownerID string, limit int) ([]Message, error)

	// PruneBefore removes messages created before cutoff and returns how many
	// were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}
