// Package sweep prunes expired chat transcript messages in the background.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/eventbus"
)

// Start prunes messages older than retention every interval until ctx is
// cancelled. A zero retention or interval keeps transcripts forever and
// returns immediately.
func Start(ctx context.Context, store chat.Store, bus *eventbus.EventBus, retention, interval time.Duration) {
	if retention <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		Once(ctx, store, bus, retention, time.Now())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Once prunes messages created before now minus retention and returns how
// many were removed.
func Once(ctx context.Context, store chat.Store, bus *eventbus.EventBus, retention time.Duration, now time.Time) int {
	removed, err := store.PruneBefore(ctx, now.Add(-retention))
	if err != nil {
		log.Debug().Err(err).Msg("chat sweep failed")
		return 0
	}
	if removed > 0 && bus != nil {
		bus.PublishChatPruned(eventbus.ChatPrunedPayload{Removed: removed})
	}
	return removed
}
